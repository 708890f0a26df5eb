// ABOUTME: HTTP handlers for the admin UI.
// ABOUTME: Serves resource tabs, htmx panel fragments, the backend call log, and schema JSON.

package admin

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/2389/joinlab/internal/errors"
	"github.com/2389/joinlab/internal/panel"
	"github.com/2389/joinlab/internal/resource"
	"github.com/2389/joinlab/internal/shell"
	"github.com/2389/joinlab/internal/store"
)

type Handlers struct {
	registry *resource.Registry
	sessions *Sessions
	store    *store.Store
	apiBase  string
}

// NewHandlers wires the UI to a registry and session store. s may be nil, in
// which case the call log page is not served.
func NewHandlers(reg *resource.Registry, sessions *Sessions, s *store.Store, apiBase string) *Handlers {
	return &Handlers{registry: reg, sessions: sessions, store: s, apiBase: apiBase}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/schema", h.schemaList)
	r.Get("/schema/{resource}", h.schemaGet)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)

		r.Get("/", h.index)
		r.Get("/notice", h.notice)
		r.Post("/notice/dismiss", h.dismiss)
		if h.store != nil {
			r.Get("/logs", h.logsList)
		}

		r.Route("/r/{resource}", func(r chi.Router) {
			r.Get("/", h.page)
			r.Get("/panel", h.panelFragment)
			r.Post("/search", h.search)
			r.Post("/page", h.paginate)
			r.Post("/size", h.pageSize)
			r.Get("/new", h.openCreate)
			r.Get("/edit/{id}", h.openEdit)
			r.Post("/field", h.field)
			r.Post("/submit", h.submit)
			r.Post("/cancel", h.cancel)
			r.Get("/delete/{id}", h.askDelete)
			r.Post("/delete/{id}", h.confirmDelete)
		})
	})
}

// pageData is shared by full pages and htmx fragments
type pageData struct {
	Title       string
	APIBase     string
	Tabs        []shell.Tab
	LogsEnabled bool
	LogsActive  bool
	OOB         bool
	Panel       *panelData
	Toast       toastData
	Logs        *logsData
}

type panelData struct {
	Base        string
	View        panel.View
	Table       template.HTML
	Form        template.HTML
	PageSizes   []int
	ModalTitle  string
	SubmitLabel string
	Prompt      string
}

type toastData struct {
	Message     string
	RemainingMs int64
	OOB         bool
}

func (h *Handlers) data(sh *shell.Shell, p *panel.Panel) pageData {
	d := pageData{
		Title:       "Admin",
		APIBase:     h.apiBase,
		Tabs:        sh.Tabs(),
		LogsEnabled: h.store != nil,
		Toast:       toastFor(sh),
	}
	if p != nil {
		d.Panel = newPanelData(p.Snapshot())
		d.Title = d.Panel.View.Schema.Label
	}
	return d
}

func newPanelData(v panel.View) *panelData {
	base := "/r/" + v.Schema.Name
	pd := &panelData{
		Base:      base,
		View:      v,
		Table:     template.HTML(RenderTable(base, v.Schema.Columns, v.Rows, v.Schema.ID, v.Loading())),
		PageSizes: panel.PageSizes,
	}
	switch v.Mode {
	case panel.ModeCreating:
		pd.ModalTitle = "Create in " + v.Schema.Label
		pd.SubmitLabel = "Create"
	case panel.ModeEditing:
		pd.ModalTitle = "Edit " + v.Schema.Label
		pd.SubmitLabel = "Save"
	case panel.ModeConfirming:
		pd.Prompt = panel.DeletePrompt
	}
	if pd.ModalTitle != "" {
		pd.Form = template.HTML(RenderForm(base, v.Schema.Fields, v.Draft))
	}
	return pd
}

func toastFor(sh *shell.Shell) toastData {
	n := sh.Notifier()
	return toastData{Message: n.Current(), RemainingMs: n.Remaining().Milliseconds()}
}

// mount selects the resource named in the URL on the caller's shell
func (h *Handlers) mount(w http.ResponseWriter, r *http.Request) (*shell.Shell, *panel.Panel, bool) {
	sh := ShellFromContext(r.Context())
	name := chi.URLParam(r, "resource")
	p, err := sh.Select(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, nil, false
	}
	return sh, p, true
}

func (h *Handlers) renderFragment(w http.ResponseWriter, sh *shell.Shell, p *panel.Panel) {
	d := h.data(sh, p)
	d.OOB = true
	d.Toast.OOB = true
	w.Header().Set("Content-Type", "text/html")
	if err := renderPartial(w, "fragment", d); err != nil {
		log.Printf("render fragment: %v", err)
	}
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/r/"+h.registry.Default(), http.StatusFound)
}

// page serves the full document. A reload of the active tab refetches its
// rows; Select only loads when it mounts a new panel.
func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	active, _ := ShellFromContext(r.Context()).Active()
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	if active == chi.URLParam(r, "resource") {
		// Load failures are already surfaced through the notifier
		_ = p.Load(r.Context())
	}
	w.Header().Set("Content-Type", "text/html")
	if err := renderPage(w, "resource", h.data(sh, p)); err != nil {
		log.Printf("render resource page: %v", err)
	}
}

func (h *Handlers) panelFragment(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	p.SetQuery(r.Context(), r.FormValue("q"))
	h.renderFragment(w, sh, p)
}

func (h *Handlers) paginate(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	switch r.FormValue("dir") {
	case "prev":
		p.Prev(r.Context())
	case "next":
		p.Next(r.Context())
	default:
		n, err := strconv.Atoi(r.FormValue("page"))
		if err != nil {
			sh.Notifier().Push("Invalid page number")
			break
		}
		p.SetPage(r.Context(), n)
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) pageSize(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	size, err := strconv.Atoi(r.FormValue("pageSize"))
	if err != nil || !slices.Contains(panel.PageSizes, size) {
		sh.Notifier().Push(fmt.Sprintf("Page size must be one of %v", panel.PageSizes))
	} else {
		p.SetPageSize(r.Context(), size)
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) openCreate(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	p.OpenCreate()
	h.renderFragment(w, sh, p)
}

func (h *Handlers) openEdit(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	if row, found := p.Row(recordID(r)); found {
		p.OpenEdit(row)
	} else {
		sh.Notifier().Push("Record not found")
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) field(w http.ResponseWriter, r *http.Request) {
	_, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrInvalidRequest, err.Error())
		return
	}
	if err := p.BindForm(formValues(r.PostForm)); err != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrInvalidRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		sh.Notifier().Push(err.Error())
		h.renderFragment(w, sh, p)
		return
	}
	if err := p.BindForm(formValues(r.PostForm)); err != nil {
		sh.Notifier().Push(err.Error())
	} else {
		// Failures are pushed to the notifier and keep the modal open
		p.Submit(r.Context())
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	p.Cancel()
	h.renderFragment(w, sh, p)
}

func (h *Handlers) askDelete(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	if row, found := p.Row(recordID(r)); found {
		p.AskDelete(row)
	} else {
		sh.Notifier().Push("Record not found")
	}
	h.renderFragment(w, sh, p)
}

func (h *Handlers) confirmDelete(w http.ResponseWriter, r *http.Request) {
	sh, p, ok := h.mount(w, r)
	if !ok {
		return
	}
	id := recordID(r)
	answer := r.FormValue("confirm") == "yes"

	v := p.Snapshot()
	row := v.Pending
	if v.PendingID() != id {
		var found bool
		if row, found = p.Row(id); !found {
			row = resource.Record{v.Schema.ID: id}
		}
	}
	p.Delete(r.Context(), row, func(string) bool { return answer })
	h.renderFragment(w, sh, p)
}

func (h *Handlers) notice(w http.ResponseWriter, r *http.Request) {
	sh := ShellFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html")
	renderPartial(w, "toast", toastFor(sh))
}

func (h *Handlers) dismiss(w http.ResponseWriter, r *http.Request) {
	sh := ShellFromContext(r.Context())
	sh.Notifier().Dismiss()
	w.Header().Set("Content-Type", "text/html")
	renderPartial(w, "toast", toastFor(sh))
}

func (h *Handlers) schemaList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"default":   h.registry.Default(),
		"resources": h.registry.All(),
	})
}

func (h *Handlers) schemaGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "resource")
	s, ok := h.registry.Get(name)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrUnknownResource, fmt.Sprintf("no resource named %q", name))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// logsData feeds the backend call log page
type logsData struct {
	Calls        []*store.Call
	Stats        *store.CallStats
	TopEndpoints []store.Endpoint
	Activity     []resourceActivity
	Methods      []string
	Filter       store.CallQuery
}

// resourceActivity summarizes one resource over the last 24 hours
type resourceActivity struct {
	Name      string
	Label     string
	Calls     int
	ErrorRate float64
}

func (h *Handlers) logsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.CallQuery{
		Limit:      100,
		Resource:   q.Get("resource"),
		Method:     q.Get("method"),
		PathPrefix: q.Get("path"),
		FailedOnly: q.Get("failed") != "",
	}
	if sc := q.Get("status"); sc != "" {
		code, err := strconv.Atoi(sc)
		if err != nil || code < 0 {
			errors.WriteErrorWithField(w, http.StatusBadRequest, errors.ErrInvalidField, "status must be a number", "status")
			return
		}
		filter.StatusCode = code
	}

	calls, err := h.store.GetCalls(&filter)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrDatabaseError, err.Error())
		return
	}

	// Pretty-print JSON in request/response bodies
	for _, c := range calls {
		c.RequestBody = prettyJSON(c.RequestBody)
		c.ResponseBody = prettyJSON(c.ResponseBody)
	}

	stats, err := h.store.GetCallStats()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrDatabaseError, err.Error())
		return
	}

	topEndpoints, err := h.store.GetTopEndpoints(10)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrDatabaseError, err.Error())
		return
	}

	sh := ShellFromContext(r.Context())
	d := h.data(sh, nil)
	d.Title = "Backend calls"
	d.LogsActive = true
	d.Logs = &logsData{
		Calls:        calls,
		Stats:        stats,
		TopEndpoints: topEndpoints,
		Activity:     h.activity(time.Now().Add(-24 * time.Hour)),
		Methods:      []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		Filter:       filter,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := renderPage(w, "logs", d); err != nil {
		log.Printf("render logs page: %v", err)
	}
}

func (h *Handlers) activity(since time.Time) []resourceActivity {
	var out []resourceActivity
	for _, s := range h.registry.All() {
		calls, err := h.store.GetResourceCallCount(s.Path, since)
		if err != nil {
			log.Printf("count calls for %s: %v", s.Path, err)
		}
		rate, err := h.store.GetResourceErrorRate(s.Path, since)
		if err != nil {
			log.Printf("error rate for %s: %v", s.Path, err)
		}
		out = append(out, resourceActivity{Name: s.Path, Label: s.Label, Calls: calls, ErrorRate: rate})
	}
	return out
}

// prettyJSON formats JSON with indentation, or returns original string if not valid JSON
func prettyJSON(s string) string {
	if s == "" {
		return s
	}
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	formatted, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(formatted)
}

func recordID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if un, err := url.PathUnescape(id); err == nil {
		return un
	}
	return id
}

// formValues keeps the first value of each posted key
func formValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
