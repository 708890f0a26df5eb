// ABOUTME: Resource panel state machine: list, search, paginate, create, edit, delete.
// ABOUTME: Drives the transport for one resource and reports outcomes as notifications.

package panel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/2389/joinlab/internal/client"
	"github.com/2389/joinlab/internal/resource"
)

// PageSizes are the page sizes a user can pick.
var PageSizes = []int{10, 20, 50}

// DefaultPageSize is the page size of a freshly mounted panel.
const DefaultPageSize = 10

var (
	// ErrSuperseded is returned by a list call whose response arrived after a
	// newer list request was issued. Its result is discarded.
	ErrSuperseded = errors.New("list response superseded by a newer request")
	// ErrNoModal is returned when a draft operation runs with no modal open.
	ErrNoModal = errors.New("no create or edit form is open")
)

// Transport is the backend contract the panel needs.
type Transport interface {
	List(ctx context.Context, path string, params client.ListParams) (*client.Page, error)
	Create(ctx context.Context, path string, draft resource.Record) (resource.Record, error)
	Update(ctx context.Context, path, id string, draft resource.Record) (resource.Record, error)
	Delete(ctx context.Context, path, id string) error
}

// Notifier receives transient outcome messages.
type Notifier interface {
	Push(msg string)
}

// Confirm is a blocking yes/no prompt.
type Confirm func(prompt string) bool

// DeletePrompt is the question asked before a delete.
const DeletePrompt = "Delete this record?"

// LoadState tracks the list request lifecycle.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
)

// Mode tracks which modal, if any, is open.
type Mode string

const (
	ModeNone       Mode = ""
	ModeCreating   Mode = "creating"
	ModeEditing    Mode = "editing"
	ModeConfirming Mode = "confirming"
)

// Panel owns the list window and modal state for one resource. It is safe
// for concurrent use; the lock is never held across a backend call.
type Panel struct {
	schema    resource.Schema
	transport Transport
	notifier  Notifier

	mu       sync.Mutex
	seq      uint64
	load     LoadState
	rows     []resource.Record
	total    int
	page     int
	pageSize int
	query    string

	mode    Mode
	draft   resource.Record
	editID  string
	pending resource.Record
}

// Option configures a Panel at mount time.
type Option func(*Panel)

// WithPageSize sets the initial page size. Sizes outside PageSizes are
// ignored.
func WithPageSize(size int) Option {
	return func(p *Panel) {
		if slices.Contains(PageSizes, size) {
			p.pageSize = size
		}
	}
}

// New mounts a panel for schema at page 1 with an empty query.
func New(schema resource.Schema, t Transport, n Notifier, opts ...Option) *Panel {
	p := &Panel{
		schema:    schema,
		transport: t,
		notifier:  n,
		load:      LoadIdle,
		rows:      []resource.Record{},
		page:      1,
		pageSize:  DefaultPageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schema returns the resource this panel manages.
func (p *Panel) Schema() resource.Schema {
	return p.schema
}

// TotalPages is max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return max(1, (total+pageSize-1)/pageSize)
}

// Load requests the current page from the backend. Failures leave the rows
// as they were and are pushed as a notification.
func (p *Panel) Load(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	params := client.ListParams{Page: p.page, PageSize: p.pageSize, Query: p.query}
	p.load = LoadLoading
	p.mu.Unlock()

	page, err := p.transport.List(ctx, p.schema.Path, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return ErrSuperseded
	}
	p.load = LoadLoaded
	if err != nil {
		p.push(err, "Load failed")
		return err
	}
	p.rows = page.Items
	p.total = page.Total
	return nil
}

// SetQuery changes the search text. A new query resets the page to 1.
func (p *Panel) SetQuery(ctx context.Context, q string) error {
	p.mu.Lock()
	changed := q != p.query || p.page != 1
	p.query = q
	p.page = 1
	p.mu.Unlock()

	if !changed {
		return nil
	}
	return p.Load(ctx)
}

// SetPage jumps to page n, clamped to at least 1.
func (p *Panel) SetPage(ctx context.Context, n int) error {
	n = max(1, n)
	p.mu.Lock()
	changed := n != p.page
	p.page = n
	p.mu.Unlock()

	if !changed {
		return nil
	}
	return p.Load(ctx)
}

// Prev moves back one page; it does nothing on page 1.
func (p *Panel) Prev(ctx context.Context) error {
	p.mu.Lock()
	page := p.page
	p.mu.Unlock()
	if page <= 1 {
		return nil
	}
	return p.SetPage(ctx, page-1)
}

// Next moves forward one page; it does nothing on the last page.
func (p *Panel) Next(ctx context.Context) error {
	p.mu.Lock()
	page, last := p.page, TotalPages(p.total, p.pageSize)
	p.mu.Unlock()
	if page >= last {
		return nil
	}
	return p.SetPage(ctx, page+1)
}

// SetPageSize picks one of PageSizes and resets the page to 1.
func (p *Panel) SetPageSize(ctx context.Context, size int) error {
	if !slices.Contains(PageSizes, size) {
		return fmt.Errorf("page size %d not in %v", size, PageSizes)
	}
	p.mu.Lock()
	changed := size != p.pageSize || p.page != 1
	p.pageSize = size
	p.page = 1
	p.mu.Unlock()

	if !changed {
		return nil
	}
	return p.Load(ctx)
}

// Row finds a record on the current page by its identifier text.
func (p *Panel) Row(id string) (resource.Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.rows {
		if r.Text(p.schema.ID) == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

func (p *Panel) push(err error, fallback string) {
	if p.notifier == nil {
		return
	}
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	p.notifier.Push(msg)
}

func (p *Panel) notify(msg string) {
	if p.notifier != nil {
		p.notifier.Push(msg)
	}
}
