package httpclient

import (
	"context"
	"net/http"
)

// DoPOST sends in as JSON and decodes the response into out. Any 2xx status
// counts as success.
func (c *httpClientWrapper) DoPOST(ctx context.Context, urlStr string, in, out any) error {
	return c.do(ctx, http.MethodPost, urlStr, in, out)
}

func (c *httpClientWrapper) DoPUT(ctx context.Context, urlStr string, in, out any) error {
	return c.do(ctx, http.MethodPut, urlStr, in, out)
}
