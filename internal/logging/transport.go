// ABOUTME: Outbound request logging for calls to the REST backend.
// ABOUTME: Captures method, path, status, duration, request/response bodies, and stores them.

package logging

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/2389/joinlab/internal/store"
)

const maxBodySize = 10 * 1024 // 10KB limit for body capture

// CallLogger receives one entry per completed backend call.
type CallLogger interface {
	LogCall(c *store.Call) error
}

// Transport is an http.RoundTripper that records every request it forwards.
type Transport struct {
	// Base performs the request. nil means http.DefaultTransport.
	Base http.RoundTripper
	// Sink stores the entries. nil disables logging.
	Sink CallLogger
	// APIPath is the path prefix the resource name follows, e.g. "/api".
	APIPath string

	pending sync.WaitGroup
}

// NewTransport wraps base so calls are written to sink.
func NewTransport(base http.RoundTripper, sink CallLogger, apiPath string) *Transport {
	return &Transport{Base: base, Sink: sink, APIPath: apiPath}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Sink == nil {
		return t.base().RoundTrip(req)
	}

	call := &store.Call{
		Resource: ResourceFromPath(t.APIPath, req.URL.Path),
		Method:   req.Method,
		URL:      req.URL.String(),
		Path:     req.URL.Path,
	}

	// Capture request body (if present)
	if req.Body != nil && req.Body != http.NoBody {
		bodyBytes, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		call.RequestBody = truncate(bodyBytes)
		// Send a copy so the caller's request is left untouched
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	start := time.Now()
	call.Timestamp = start
	resp, err := t.base().RoundTrip(req)
	call.DurationMs = int(time.Since(start).Milliseconds())

	if err != nil {
		call.Error = err.Error()
		t.log(call)
		return nil, err
	}

	call.StatusCode = resp.StatusCode
	resp.Body = &capturingBody{
		ReadCloser: resp.Body,
		buf:        &bytes.Buffer{},
		done: func(body string) {
			call.ResponseBody = body
			t.log(call)
		},
	}
	return resp, nil
}

// log stores the call without blocking the request path (fire and forget)
func (t *Transport) log(c *store.Call) {
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		if err := t.Sink.LogCall(c); err != nil {
			log.Printf("Failed to log backend call %s %s: %v", c.Method, c.Path, err)
		}
	}()
}

// Wait blocks until every call logged so far has been stored. Call it
// before closing the sink.
func (t *Transport) Wait() {
	t.pending.Wait()
}

func truncate(b []byte) string {
	if len(b) > maxBodySize {
		b = b[:maxBodySize]
	}
	return string(b)
}

// capturingBody buffers up to maxBodySize of what the caller reads and
// reports it once on Close.
type capturingBody struct {
	io.ReadCloser
	buf  *bytes.Buffer
	once sync.Once
	done func(body string)
}

func (b *capturingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 && b.buf.Len() < maxBodySize {
		toCopy := n
		if b.buf.Len()+toCopy > maxBodySize {
			toCopy = maxBodySize - b.buf.Len()
		}
		b.buf.Write(p[:toCopy])
	}
	return n, err
}

func (b *capturingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() { b.done(b.buf.String()) })
	return err
}
