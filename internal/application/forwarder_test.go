package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apascualco/campusgate/internal/domain"
)

type fakeResponse struct {
	body string
	err  error
}

// fakeForwarder answers by service, method and path and records every call.
type fakeForwarder struct {
	mu        sync.Mutex
	calls     []domain.ForwardRequest
	responses map[string]fakeResponse
}

func newFakeForwarder() *fakeForwarder {
	return &fakeForwarder{responses: make(map[string]fakeResponse)}
}

func fakeKey(service domain.ServiceName, method, path string) string {
	return fmt.Sprintf("%s %s %s", service, method, path)
}

func (f *fakeForwarder) on(service domain.ServiceName, method, path, body string) *fakeForwarder {
	f.responses[fakeKey(service, method, path)] = fakeResponse{body: body}
	return f
}

func (f *fakeForwarder) fail(service domain.ServiceName, method, path string, err error) *fakeForwarder {
	f.responses[fakeKey(service, method, path)] = fakeResponse{err: err}
	return f
}

func (f *fakeForwarder) Forward(_ context.Context, req domain.ForwardRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	resp, ok := f.responses[fakeKey(req.Service, req.Method, req.Path)]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", fakeKey(req.Service, req.Method, req.Path))
	}
	if resp.err != nil {
		return nil, resp.err
	}
	if resp.body == "" {
		return nil, nil
	}
	return json.RawMessage(resp.body), nil
}

func (f *fakeForwarder) recorded() []domain.ForwardRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ForwardRequest(nil), f.calls...)
}

func (f *fakeForwarder) calledPaths() []string {
	var paths []string
	for _, c := range f.recorded() {
		paths = append(paths, fakeKey(c.Service, c.Method, c.Path))
	}
	return paths
}

func TestCall_DecodesPerCallSite(t *testing.T) {
	f := newFakeForwarder().on(domain.ServiceProject, "GET", "/promotions/student/1", `[{"id":10},{"id":11}]`)

	refs, err := Call[[]domain.PromotionRef](context.Background(), f, domain.ForwardRequest{
		Service: domain.ServiceProject, Method: "GET", Path: "/promotions/student/1",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.PromotionRef{{ID: 10}, {ID: 11}}, refs)
}

func TestCall_EmptyBodyIsZeroValue(t *testing.T) {
	f := newFakeForwarder().on(domain.ServiceProject, "DELETE", "/groups/1", "")

	out, err := Call[[]domain.GroupRef](context.Background(), f, domain.ForwardRequest{
		Service: domain.ServiceProject, Method: "DELETE", Path: "/groups/1",
	})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCall_MalformedResponse(t *testing.T) {
	f := newFakeForwarder().on(domain.ServiceProject, "GET", "/promotions/student/1", `{"id":"not-a-list"}`)

	_, err := Call[[]domain.PromotionRef](context.Background(), f, domain.ForwardRequest{
		Service: domain.ServiceProject, Method: "GET", Path: "/promotions/student/1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}

func TestCall_PassesErrorsThrough(t *testing.T) {
	downstream := &domain.DownstreamError{Service: domain.ServiceProject, StatusCode: 404, Message: "not found"}
	f := newFakeForwarder().fail(domain.ServiceProject, "GET", "/projects/9", downstream)

	_, err := Call[map[string]any](context.Background(), f, domain.ForwardRequest{
		Service: domain.ServiceProject, Method: "GET", Path: "/projects/9",
	})
	assert.Same(t, downstream, err)
}
