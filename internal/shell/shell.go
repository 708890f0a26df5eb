// ABOUTME: App shell: tab selection over the registry with one mounted panel.
// ABOUTME: Owns the notification slot shared by whatever panel is active.

package shell

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389/joinlab/internal/notify"
	"github.com/2389/joinlab/internal/panel"
	"github.com/2389/joinlab/internal/resource"
)

// Shell is the root of one admin UI instance.
type Shell struct {
	registry  *resource.Registry
	transport panel.Transport
	notifier  *notify.Notifier
	panelOpts []panel.Option

	mu     sync.Mutex
	active string
	panel  *panel.Panel
}

// New creates a shell with nothing mounted yet. opts apply to every panel
// it mounts.
func New(reg *resource.Registry, t panel.Transport, n *notify.Notifier, opts ...panel.Option) *Shell {
	if n == nil {
		n = notify.New(notify.DefaultDuration)
	}
	return &Shell{registry: reg, transport: t, notifier: n, panelOpts: opts}
}

// Registry returns the schema registry the tabs come from.
func (s *Shell) Registry() *resource.Registry {
	return s.registry
}

// Notifier returns the shell's notification slot.
func (s *Shell) Notifier() *notify.Notifier {
	return s.notifier
}

// Active returns the selected tab name and its panel, or nil before the
// first Select.
func (s *Shell) Active() (string, *panel.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.panel
}

// Select mounts a fresh panel for name and loads its first page. Selecting
// the already active tab keeps the mounted panel as is. An unknown name
// leaves the current panel mounted.
func (s *Shell) Select(ctx context.Context, name string) (*panel.Panel, error) {
	schema, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}

	s.mu.Lock()
	if s.active == name && s.panel != nil {
		p := s.panel
		s.mu.Unlock()
		return p, nil
	}
	p := panel.New(schema, s.transport, s.notifier, s.panelOpts...)
	s.active = name
	s.panel = p
	s.mu.Unlock()

	// Load failures are already surfaced through the notifier.
	_ = p.Load(ctx)
	return p, nil
}

// SelectDefault mounts the registry's default tab.
func (s *Shell) SelectDefault(ctx context.Context) (*panel.Panel, error) {
	return s.Select(ctx, s.registry.Default())
}

// Tabs lists every resource in tab order with the active one marked.
func (s *Shell) Tabs() []Tab {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	schemas := s.registry.All()
	tabs := make([]Tab, 0, len(schemas))
	for _, sc := range schemas {
		tabs = append(tabs, Tab{Name: sc.Name, Label: sc.Label, Active: sc.Name == active})
	}
	return tabs
}

// Tab is one entry in the tab bar.
type Tab struct {
	Name   string
	Label  string
	Active bool
}
