// ABOUTME: Tests for tab selection and panel mounting in the app shell.
// ABOUTME: Verifies one mounted panel, fresh state per tab, and shared notifications.

package shell

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/2389/joinlab/internal/client"
	"github.com/2389/joinlab/internal/notify"
	"github.com/2389/joinlab/internal/panel"
	"github.com/2389/joinlab/internal/resource"
)

type listTransport struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (l *listTransport) List(ctx context.Context, path string, params client.ListParams) (*client.Page, error) {
	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return &client.Page{Items: []resource.Record{{"x": json.Number("1")}}, Total: 40, Page: params.Page, PageSize: params.PageSize}, nil
}

func (l *listTransport) Create(ctx context.Context, path string, d resource.Record) (resource.Record, error) {
	return d, nil
}

func (l *listTransport) Update(ctx context.Context, path, id string, d resource.Record) (resource.Record, error) {
	return d, nil
}

func (l *listTransport) Delete(ctx context.Context, path, id string) error { return nil }

func TestSelect_MountsAndLoads(t *testing.T) {
	lt := &listTransport{}
	s := New(resource.Builtin(), lt, nil)

	if name, p := s.Active(); name != "" || p != nil {
		t.Fatalf("Active() before Select = %q, %v", name, p)
	}

	p, err := s.SelectDefault(context.Background())
	if err != nil {
		t.Fatalf("SelectDefault() error = %v", err)
	}
	if p.Schema().Name != "student" {
		t.Errorf("default panel = %q, want student", p.Schema().Name)
	}
	if len(lt.paths) != 1 || lt.paths[0] != "student" {
		t.Errorf("list paths = %v, want [student]", lt.paths)
	}
}

func TestSelect_FreshPanelPerTab(t *testing.T) {
	lt := &listTransport{}
	s := New(resource.Builtin(), lt, nil)
	ctx := context.Background()

	p1, _ := s.Select(ctx, "course")
	p1.SetQuery(ctx, "algebra")
	p1.Next(ctx)

	p2, _ := s.Select(ctx, "room")
	if p2 == p1 {
		t.Fatal("Select(room) returned the course panel")
	}
	_, active := s.Active()
	if active != p2 {
		t.Error("Active() is not the room panel")
	}

	p3, _ := s.Select(ctx, "course")
	v := p3.Snapshot()
	if v.Query != "" || v.Page != 1 {
		t.Errorf("remounted course panel = q %q page %d, want fresh", v.Query, v.Page)
	}
}

func TestSelect_SameTabKeepsPanel(t *testing.T) {
	lt := &listTransport{}
	s := New(resource.Builtin(), lt, nil)
	ctx := context.Background()

	p1, _ := s.Select(ctx, "dept")
	p2, _ := s.Select(ctx, "dept")
	if p1 != p2 {
		t.Error("reselecting the active tab remounted the panel")
	}
	if len(lt.paths) != 1 {
		t.Errorf("list calls = %d, want 1", len(lt.paths))
	}
}

func TestSelect_UnknownKeepsCurrent(t *testing.T) {
	s := New(resource.Builtin(), &listTransport{}, nil)
	ctx := context.Background()
	s.Select(ctx, "dept")

	if _, err := s.Select(ctx, "nope"); err == nil {
		t.Fatal("Select(nope) error = nil, want error")
	}
	if name, _ := s.Active(); name != "dept" {
		t.Errorf("active = %q, want dept", name)
	}
}

func TestSelect_LoadErrorGoesToNotifier(t *testing.T) {
	lt := &listTransport{err: errors.New("backend unreachable")}
	n := notify.New(notify.DefaultDuration)
	s := New(resource.Builtin(), lt, n)

	if _, err := s.Select(context.Background(), "teach"); err != nil {
		t.Fatalf("Select() error = %v, want nil", err)
	}
	if got := s.Notifier().Current(); got != "backend unreachable" {
		t.Errorf("notification = %q", got)
	}
}

func TestTabs_MarksActive(t *testing.T) {
	s := New(resource.Builtin(), &listTransport{}, nil)
	s.Select(context.Background(), "sched")

	tabs := s.Tabs()
	if len(tabs) != 9 {
		t.Fatalf("tabs = %d, want 9", len(tabs))
	}
	for _, tab := range tabs {
		if tab.Active != (tab.Name == "sched") {
			t.Errorf("tab %s active = %v", tab.Name, tab.Active)
		}
	}
	if tabs[0].Label != "Departments" {
		t.Errorf("first tab label = %q", tabs[0].Label)
	}
}

func TestSelect_AppliesPanelOptions(t *testing.T) {
	s := New(resource.Builtin(), &listTransport{}, nil, panel.WithPageSize(50))
	p, _ := s.Select(context.Background(), "employee")
	if got := p.Snapshot().PageSize; got != 50 {
		t.Errorf("page size = %d, want 50", got)
	}
}
