// Package transport performs the single request/response exchange a query
// execution needs. Transport is the seam the client depends on; HTTP is the
// production implementation.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	eventbus "github.com/hanpama/shapeql/internal/eventbus"
	events "github.com/hanpama/shapeql/internal/events"
)

// ErrClosed is returned by Exchange after Close.
var ErrClosed = errors.New("transport: closed")

// Request is one outgoing exchange.
type Request struct {
	URL    string
	Method string
	Header http.Header
	Body   []byte
}

// Response is the raw outcome of an exchange. Any status is returned as a
// Response; interpreting it is the caller's job.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether Status is 2xx.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Transport sends a request and returns the response. Errors mean no usable
// response was received.
type Transport interface {
	Exchange(ctx context.Context, req *Request) (*Response, error)
}

// HTTP is a Transport over net/http.
type HTTP struct {
	opts   *Options
	closed atomic.Bool
}

var _ Transport = (*HTTP)(nil)

func NewHTTP(opts ...Option) *HTTP {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.Client == nil {
		o.Client = &http.Client{}
	}
	return &HTTP{opts: o}
}

func (t *HTTP) Exchange(ctx context.Context, req *Request) (resp *Response, err error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	// Determine deadline
	if _, ok := ctx.Deadline(); !ok && t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	hr, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	if t.opts.UserAgent != "" && hr.Header.Get("User-Agent") == "" {
		hr.Header.Set("User-Agent", t.opts.UserAgent)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPClientStart{Method: method, URL: req.URL})
	defer func() {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		eventbus.Publish(ctx, events.HTTPClientFinish{
			Method:   method,
			URL:      req.URL,
			Status:   status,
			Err:      err,
			Duration: time.Since(start),
		})
	}()

	hresp, err := t.opts.Client.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	defer hresp.Body.Close()

	reader := io.Reader(hresp.Body)
	if t.opts.MaxBodyBytes > 0 {
		reader = io.LimitReader(hresp.Body, t.opts.MaxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	if t.opts.MaxBodyBytes > 0 && int64(len(body)) > t.opts.MaxBodyBytes {
		return nil, fmt.Errorf("transport: response body exceeds %d bytes", t.opts.MaxBodyBytes)
	}
	return &Response{Status: hresp.StatusCode, Header: hresp.Header, Body: body}, nil
}

// Close releases idle connections. Later calls to Exchange fail with
// ErrClosed.
func (t *HTTP) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.opts.Client.CloseIdleConnections()
	return nil
}
