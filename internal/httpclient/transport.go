package httpclient

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// LoggingTransport implements http.RoundTripper and logs every request and
// response, bodies included, at debug level. When Username is set it also adds
// Basic Auth credentials.
type LoggingTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewLoggingTransport wraps transport. If transport is nil,
// http.DefaultTransport will be used.
func NewLoggingTransport(transport http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingTransport{
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody := ""
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			reqBody = string(bodyBytes)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
		}
	}

	t.Logger.Debug("outgoing request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", reqBody)

	if t.Username != "" {
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.Username, t.Password)
	}
	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		t.Logger.Debug("request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}

	respBody := ""
	if resp.Body != nil {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err == nil {
			respBody = string(bodyBytes)
			resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
		}
	}

	t.Logger.Debug("incoming response",
		"status", resp.Status,
		"body", respBody)

	return resp, nil
}
