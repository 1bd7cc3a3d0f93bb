package httpclient

import (
	"context"
	"net/http"
)

// DoGET fetches url and decodes the JSON response into out
func (c *httpClientWrapper) DoGET(ctx context.Context, urlStr string, out any) error {
	return c.do(ctx, http.MethodGet, urlStr, nil, out)
}
