package promrange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// BackendError is any failure talking to the Prometheus backend.
// Unreachable marks transport-level failures (connect/timeout) that a
// caller may treat as retryable; this client itself never retries.
type BackendError struct {
	Unreachable bool
	Msg         string
}

func (e *BackendError) Error() string {
	if e.Unreachable {
		return fmt.Sprintf("backend unreachable: %s", e.Msg)
	}
	return fmt.Sprintf("backend error: %s", e.Msg)
}

type Client struct {
	api     v1.API
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	c, err := api.NewClient(api.Config{Address: baseURL})
	if err != nil {
		return nil, fmt.Errorf("new prometheus client: %w", err)
	}
	return &Client{api: v1.NewAPI(c), timeout: timeout}, nil
}

// QueryRange issues exactly one range query against the backend. An empty
// matrix is a valid result, not an error; emptiness is the extractor's
// concern.
func (c *Client) QueryRange(ctx context.Context, query string, r Range) (model.Matrix, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	val, _, err := c.api.QueryRange(ctx, query, v1.Range{Start: r.Start, End: r.End, Step: r.Step})
	if err != nil {
		return nil, classify(err)
	}
	matrix, ok := val.(model.Matrix)
	if !ok {
		return nil, &BackendError{Msg: fmt.Sprintf("unexpected result type %q", val.Type())}
	}
	return matrix, nil
}

// classify splits backend failures into unreachable (transport) and error
// (the backend answered, message kept verbatim).
func classify(err error) error {
	var apiErr *v1.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case v1.ErrTimeout, v1.ErrCanceled:
			return &BackendError{Unreachable: true, Msg: err.Error()}
		}
		msg := apiErr.Msg
		if msg == "" {
			msg = err.Error()
		}
		return &BackendError{Msg: msg}
	}
	// Anything the v1 API did not wrap never reached the backend.
	return &BackendError{Unreachable: true, Msg: err.Error()}
}
