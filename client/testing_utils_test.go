package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cyp0633/repeatcal/event"
)

type call struct {
	method string
	url    string
	body   []byte
}

// mockHTTPClient records every request and answers from canned responses
type mockHTTPClient struct {
	mu     sync.Mutex
	calls  []call
	events []event.Event // served by DoGET

	getErr    error
	postErr   error
	putErr    error
	deleteErr error
}

func (m *mockHTTPClient) record(method, url string, in any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var body []byte
	if in != nil {
		body, _ = json.Marshal(in)
	}
	m.calls = append(m.calls, call{method: method, url: url, body: body})
}

func (m *mockHTTPClient) DoGET(ctx context.Context, url string, out any) error {
	m.record("GET", url, nil)
	if m.getErr != nil {
		return m.getErr
	}
	if resp, ok := out.(*eventsResponse); ok {
		resp.Events = m.events
	}
	return nil
}

func (m *mockHTTPClient) DoPOST(ctx context.Context, url string, in, out any) error {
	m.record("POST", url, in)
	return m.postErr
}

func (m *mockHTTPClient) DoPUT(ctx context.Context, url string, in, out any) error {
	m.record("PUT", url, in)
	return m.putErr
}

func (m *mockHTTPClient) DoDELETE(ctx context.Context, url string) error {
	m.record("DELETE", url, nil)
	return m.deleteErr
}

func (m *mockHTTPClient) methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.method + " " + c.url
	}
	return out
}

// noticeRecorder collects notices in order
type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}
