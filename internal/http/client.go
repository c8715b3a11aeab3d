package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
)

// Default transport settings.
const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 30 * time.Second
	DefaultBackoffUnit = time.Second
)

// Payload is an encoded request body.
type Payload struct {
	ContentType string
	Body        []byte
}

// Outcome classifies a single transport attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeNetworkError
	OutcomeHTTPError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeNetworkError:
		return "network-error"
	case OutcomeHTTPError:
		return "http-error"
	default:
		return "unknown"
	}
}

// Attempt records one try of Send.
type Attempt struct {
	Number      int
	Start       time.Time
	Duration    time.Duration
	Outcome     Outcome
	StatusCode  int
	ContentType string
	Err         error
}

// Response is the result of the first successful attempt.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Attempts    []Attempt
}

// Options controls retries and observation of a Send call. Zero values fall
// back to the package defaults.
type Options struct {
	MaxAttempts int
	Timeout     time.Duration
	BackoffUnit time.Duration

	// Header is added to every attempt.
	Header http.Header

	// OnAttempt is called after each attempt finishes.
	OnAttempt func(Attempt)

	// OnProgress is called while the response body is read.
	// total is -1 when the server sent no Content-Length.
	OnProgress func(read, total int64)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BackoffUnit <= 0 {
		o.BackoffUnit = DefaultBackoffUnit
	}
	return o
}

// Client sends generation requests to the rendering service.
//
// Client provides:
//   - Bounded retries with a linear back-off between attempts
//   - A fresh deadline per attempt
//   - Classification of every failure into the failure taxonomy
//   - Body read progress through ProgressWriter
//
// Example usage:
//
//	client := NewClient("SinergiaPDF")
//
//	resp, err := client.Send(ctx, generateURL, payload, Options{
//	    OnAttempt: func(a Attempt) { log.Printf("attempt %d: %s", a.Number, a.Outcome) },
//	})
//	if err != nil {
//	    // failure.KindTimeout, failure.KindNetwork or failure.KindService
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client that identifies itself with userAgent.
//
// Deadlines are enforced per attempt through the request context, so the
// underlying http.Client carries no global timeout.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = "SinergiaPDF"
	}
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
		sleep:      sleepContext,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  resp.ContentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, resp.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Send POSTs payload to url, retrying on timeouts, network errors and
// non-2xx responses.
//
// After failed attempt k (k < MaxAttempts) Send waits k * BackoffUnit. Only
// ctx can interrupt the wait; cancelling ctx aborts without further
// attempts. When every attempt fails the last classified error is returned.
//
// The returned *failure.Error is one of:
//   - KindTimeout: the attempt deadline passed
//   - KindNetwork: no response was received
//   - KindService: the service answered with a non-2xx status
func (c *Client) Send(ctx context.Context, url string, payload Payload, opts Options) (*Response, error) {
	opts = opts.withDefaults()

	var (
		attempts []Attempt
		lastErr  error
	)
	for n := 1; n <= opts.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return nil, aborted(err)
		}

		resp, attempt, err := c.attempt(ctx, n, url, payload, opts)
		attempts = append(attempts, attempt)
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}
		if err == nil {
			resp.Attempts = attempts
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, aborted(ctx.Err())
		}
		if n < opts.MaxAttempts {
			if err := c.sleep(ctx, time.Duration(n)*opts.BackoffUnit); err != nil {
				return nil, aborted(err)
			}
		}
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, n int, url string, payload Payload, opts Options) (*Response, Attempt, error) {
	attempt := Attempt{Number: n, Start: time.Now()}
	finish := func(outcome Outcome, err error) Attempt {
		attempt.Duration = time.Since(attempt.Start)
		attempt.Outcome = outcome
		attempt.Err = err
		return attempt
	}

	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(payload.Body))
	if err != nil {
		ferr := failure.Network("send", err)
		return nil, finish(OutcomeNetworkError, ferr), ferr
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", payload.ContentType)
	req.Header.Set("Accept", "application/pdf, application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		ferr := classify(attemptCtx, n, opts.Timeout, err)
		return nil, finish(outcomeOf(ferr), ferr), ferr
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	attempt.ContentType = resp.Header.Get("Content-Type")

	var buf bytes.Buffer
	var w io.Writer = &buf
	if opts.OnProgress != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		w = &ProgressWriter{Writer: &buf, Total: resp.ContentLength, OnUpdate: opts.OnProgress}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		ferr := classify(attemptCtx, n, opts.Timeout, err)
		return nil, finish(outcomeOf(ferr), ferr), ferr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ferr := failure.Service("send", resp.StatusCode, strings.TrimSpace(http.StatusText(resp.StatusCode)), buf.Bytes())
		return nil, finish(OutcomeHTTPError, ferr), ferr
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: attempt.ContentType,
		Body:        buf.Bytes(),
	}, finish(OutcomeSuccess, nil), nil
}

// Ping performs a single GET and returns the status code. It does not
// retry; deadlines come from ctx.
func (c *Client) Ping(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func classify(attemptCtx context.Context, n int, timeout time.Duration, err error) *failure.Error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return failure.Timeout("send", fmt.Sprintf("attempt %d exceeded %s", n, timeout), context.DeadlineExceeded)
	}
	return failure.Network("send", err)
}

func outcomeOf(err *failure.Error) Outcome {
	if err.Kind == failure.KindTimeout {
		return OutcomeTimeout
	}
	return OutcomeNetworkError
}

func aborted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.Timeout("send", "cancelled", err)
	}
	return failure.Network("send", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
