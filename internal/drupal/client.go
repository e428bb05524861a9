// Package drupal implements the REST collaborators the pipeline depends
// on: the field schema fetch, the taxonomy snapshot, remote existence
// checks, and the step executor that performs the planned mutations.
//
// All requests go through a shared Client that applies basic
// authentication, a configurable inter-request pause, and retry with
// exponential backoff for transient failures.
package drupal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/vknys/ingot/internal/retry"
	"github.com/vknys/ingot/pkg/ingot"
)

// StatusError is a non-2xx HTTP response surfaced as an error. The retry
// classifier inspects the status code to decide retryability.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

// Error returns a human-readable description of the failed request.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// StatusCode returns the HTTP status code of the failed request.
func (e *StatusError) StatusCode() int { return e.Status }

// Client is the authenticated REST client for one repository host.
//
// Thread Safety:
// Client is NOT safe for concurrent use. The pipeline issues requests
// strictly sequentially, and the inter-request pause depends on that.
type Client struct {
	http     *resty.Client
	external *resty.Client
	retrier  *retry.Executor
	logger   ingot.Logger
	pause    time.Duration
	last     time.Time
}

// NewClient creates a REST client for the host named in config.
// Panics if logger is nil.
func NewClient(config ingot.BatchConfig, logger ingot.Logger) *Client {
	if logger == nil {
		panic("logger cannot be nil")
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(config.Host, "/")).
		SetBasicAuth(config.Username, config.Password).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "ingot")

	// External file URLs must be reachable without authentication; the
	// repository credentials never leave the configured host.
	externalClient := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "ingot")

	strategy := retry.NewExponentialBackoff(ingot.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(ingot.DefaultRetryInitialDelay),
		retry.WithMaxDelay(ingot.DefaultRetryMaxDelay),
	)
	retrier := retry.NewExecutor(retry.NewHTTPErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("Retrying request (attempt %d) after %s: %v", attempt+1, delay, err)
		})

	return &Client{
		http:     httpClient,
		external: externalClient,
		retrier:  retrier,
		logger:   logger,
		pause:    config.RequestPause,
	}
}

// Close releases the underlying HTTP clients' resources.
func (c *Client) Close() error {
	err := c.http.Close()
	if cerr := c.external.Close(); err == nil {
		err = cerr
	}
	return err
}

// Ping verifies the host is reachable and the integration endpoints are
// enabled. Returns an error wrapping ErrConnectionFailed otherwise.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).Get("/islandora_workbench_integration/version")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "GET", URL: resp.Request.URL, Status: resp.StatusCode()}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("host %s is not reachable: %v: %w", c.http.BaseURL(), err, ingot.ErrConnectionFailed)
	}
	return nil
}

// do runs one request function through the pause and retry layers.
func (c *Client) do(ctx context.Context, request func(ctx context.Context) error) error {
	c.throttle(ctx)
	err := c.retrier.Execute(ctx, request)
	c.last = time.Now()
	return err
}

// throttle sleeps out the remainder of the inter-request pause.
func (c *Client) throttle(ctx context.Context) {
	if c.pause <= 0 || c.last.IsZero() {
		return
	}
	remaining := c.pause - time.Since(c.last)
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// getJSON issues a GET request and unmarshals the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).SetResult(out).Get(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "GET", URL: resp.Request.URL, Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// postJSON issues a POST request with a JSON body and unmarshals the JSON
// response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body)
		if out != nil {
			req.SetResult(out)
		}
		resp, err := req.Post(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "POST", URL: resp.Request.URL, Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// patchJSON issues a PATCH request with a JSON body.
func (c *Client) patchJSON(ctx context.Context, path string, body any) error {
	return c.do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Patch(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "PATCH", URL: resp.Request.URL, Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// deleteEntity issues a DELETE request.
func (c *Client) deleteEntity(ctx context.Context, path string) error {
	return c.do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).Delete(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "DELETE", URL: resp.Request.URL, Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// head issues a HEAD request and reports whether the response status
// indicates the entity exists. 404 is a definitive "no"; other error
// statuses are returned as errors.
func (c *Client) head(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).Head(path)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode() == 404:
			exists = false
			return nil
		case resp.IsError():
			return &StatusError{Method: "HEAD", URL: resp.Request.URL, Status: resp.StatusCode()}
		default:
			exists = true
			return nil
		}
	})
	return exists, err
}
