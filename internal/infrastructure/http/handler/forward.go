package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

// endpoint describes a route that maps onto exactly one downstream call.
type endpoint struct {
	service  domain.ServiceName
	path     forward.PathFunc
	bind     func(c *gin.Context) (domain.Payload, error)
	query    []string
	intQuery []string
	status   int
}

type endpointOption func(*endpoint)

// body binds the request JSON into T and sends it downstream.
func body[T domain.Payload]() endpointOption {
	return func(e *endpoint) {
		e.bind = func(c *gin.Context) (domain.Payload, error) {
			v := new(T)
			if err := c.ShouldBindJSON(v); err != nil {
				return nil, bindError(err)
			}
			return *v, nil
		}
	}
}

// fixedBody sends p regardless of what the caller posted.
func fixedBody(p domain.Payload) endpointOption {
	return func(e *endpoint) {
		e.bind = func(*gin.Context) (domain.Payload, error) { return p, nil }
	}
}

// query copies the named query parameters when they are non-empty.
func query(names ...string) endpointOption {
	return func(e *endpoint) { e.query = append(e.query, names...) }
}

// intQuery is like query but rejects values that are not integers.
func intQuery(names ...string) endpointOption {
	return func(e *endpoint) { e.intQuery = append(e.intQuery, names...) }
}

func status(code int) endpointOption {
	return func(e *endpoint) { e.status = code }
}

func (g *Gateway) forward(service domain.ServiceName, path forward.PathFunc, opts ...endpointOption) gin.HandlerFunc {
	e := endpoint{service: service, path: path}
	for _, opt := range opts {
		opt(&e)
	}

	return func(c *gin.Context) {
		target, err := e.path(c)
		if err != nil {
			abort(c, err)
			return
		}

		q, err := e.values(c)
		if err != nil {
			abort(c, err)
			return
		}

		req := domain.ForwardRequest{
			Service: e.service,
			Path:    target,
			Method:  c.Request.Method,
			Query:   q,
		}
		if e.bind != nil {
			payload, err := e.bind(c)
			if err != nil {
				abort(c, err)
				return
			}
			req.Body = payload
		}

		raw, err := g.forwarder.Forward(downstreamContext(c), req)
		if err != nil {
			abort(c, err)
			return
		}
		writeRaw(c, e.statusFor(c.Request.Method), raw)
	}
}

func (e *endpoint) values(c *gin.Context) (url.Values, error) {
	q := url.Values{}
	for _, name := range e.query {
		if v := c.Query(name); v != "" {
			q.Set(name, v)
		}
	}
	for _, name := range e.intQuery {
		v, ok, err := optionalIntQuery(c, name)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Set(name, strconv.FormatInt(v, 10))
		}
	}
	if len(q) == 0 {
		return nil, nil
	}
	return q, nil
}

func (e *endpoint) statusFor(method string) int {
	if e.status != 0 {
		return e.status
	}
	return defaultStatus(method)
}

func defaultStatus(method string) int {
	if method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}

// downstreamContext keeps the request's values (trace, request id) but not
// its cancellation, so a client hanging up does not abort calls in flight.
func downstreamContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func writeRaw(c *gin.Context, code int, raw json.RawMessage) {
	if len(raw) == 0 {
		c.Status(code)
		return
	}
	c.Data(code, "application/json; charset=utf-8", raw)
}

func intParam(c *gin.Context, name string) (int64, error) {
	return domain.ParseID(name, c.Param(name))
}

func optionalIntQuery(c *gin.Context, name string) (int64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := domain.ParseID(name, raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// bindError turns a binding failure into a ValidationError naming the first
// offending field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return domain.NewValidationError(field, "is required")
		case "oneof":
			return domain.NewValidationError(field, "must be one of [%s]", fe.Param())
		case "min":
			return domain.NewValidationError(field, "must be at least %s", fe.Param())
		default:
			return domain.NewValidationError(field, "failed %s validation", fe.Tag())
		}
	}
	return domain.NewValidationError("body", "%v", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func forwardPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
