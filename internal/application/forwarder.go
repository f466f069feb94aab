package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apascualco/campusgate/internal/domain"
)

// Forwarder performs exactly one downstream call and returns the 2xx body
// untouched.
type Forwarder interface {
	Forward(ctx context.Context, req domain.ForwardRequest) (json.RawMessage, error)
}

// Call forwards req and decodes the answer into the type the call site expects.
// An empty 2xx body yields the zero value.
func Call[T any](ctx context.Context, f Forwarder, req domain.ForwardRequest) (T, error) {
	var out T

	raw, err := f.Forward(ctx, req)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: [%s] %s %s: %v", domain.ErrMalformedResponse, req.Service, req.Method, req.Path, err)
	}
	return out, nil
}

// withBudget caps an aggregation when a positive timeout is configured.
func withBudget(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
