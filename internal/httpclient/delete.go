package httpclient

import (
	"context"
	"net/http"
)

// DoDELETE sends a DELETE request. Any response body is discarded.
func (c *httpClientWrapper) DoDELETE(ctx context.Context, urlStr string) error {
	return c.do(ctx, http.MethodDelete, urlStr, nil, nil)
}
