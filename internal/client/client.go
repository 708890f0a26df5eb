// ABOUTME: HTTP client for the JoinLab REST backend.
// ABOUTME: Implements list, create, update, and delete over one base URL with no retries.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/2389/joinlab/internal/resource"
)

// Page is one window of records returned by a list call.
type Page struct {
	Items    []resource.Record `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ListParams selects a page. Zero values are left out of the request.
type ListParams struct {
	Page     int
	PageSize int
	Query    string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	return v
}

// Client talks to the backend. It never retries and sets no timeout of its
// own; cancellation comes from the caller's context.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTransport wraps requests with rt, e.g. the request log transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http = &http.Client{Transport: rt}
	}
}

// New creates a client for an absolute base URL such as
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the base URL requests are made against.
func (c *Client) BaseURL() string {
	return c.base
}

// List fetches one page of records: GET {base}/{path}?page=&pageSize=&q=
func (c *Client) List(ctx context.Context, path string, params ListParams) (*Page, error) {
	u := c.base + "/" + path
	if qs := params.values().Encode(); qs != "" {
		u += "?" + qs
	}

	var page Page
	if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []resource.Record{}
	}
	return &page, nil
}

// Create sends a new record and returns the backend's canonical copy.
func (c *Client) Create(ctx context.Context, path string, draft resource.Record) (resource.Record, error) {
	var rec resource.Record
	if err := c.do(ctx, http.MethodPost, c.base+"/"+path, draft, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces the record addressed by id.
func (c *Client) Update(ctx context.Context, path, id string, draft resource.Record) (resource.Record, error) {
	var rec resource.Record
	if err := c.do(ctx, http.MethodPut, c.recordURL(path, id), draft, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record addressed by id. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, path, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(path, id), nil, nil)
}

func (c *Client) recordURL(path, id string) string {
	return c.base + "/" + path + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, u string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", method, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Method: method, URL: u, Body: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Method: method, URL: u, Status: resp.StatusCode, Body: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Method: method, URL: u, Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &RequestError{Method: method, URL: u, Status: resp.StatusCode, Body: "invalid JSON response: " + err.Error(), Err: err}
	}
	return nil
}
