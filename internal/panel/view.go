// ABOUTME: Read-only snapshot of a panel for rendering.
// ABOUTME: Copies rows and draft so renderers never see later mutations.

package panel

import "github.com/2389/joinlab/internal/resource"

// View is a consistent snapshot of panel state.
type View struct {
	Schema     resource.Schema
	Rows       []resource.Record
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Query      string
	Load       LoadState
	Mode       Mode
	Draft      resource.Record
	EditID     string
	Pending    resource.Record
}

// Loading reports whether a list request is in flight.
func (v View) Loading() bool { return v.Load == LoadLoading }

// PrevDisabled is true on the first page.
func (v View) PrevDisabled() bool { return v.Page <= 1 }

// NextDisabled is true on the last page.
func (v View) NextDisabled() bool { return v.Page >= v.TotalPages }

// PendingID is the identifier of the row awaiting delete confirmation.
func (v View) PendingID() string {
	if v.Pending == nil {
		return ""
	}
	return v.Pending.Text(v.Schema.ID)
}

// Snapshot returns the current state.
func (p *Panel) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows := make([]resource.Record, len(p.rows))
	for i, r := range p.rows {
		rows[i] = r.Clone()
	}
	v := View{
		Schema:     p.schema,
		Rows:       rows,
		Total:      p.total,
		Page:       p.page,
		PageSize:   p.pageSize,
		TotalPages: TotalPages(p.total, p.pageSize),
		Query:      p.query,
		Load:       p.load,
		Mode:       p.mode,
		EditID:     p.editID,
	}
	if p.draft != nil {
		v.Draft = p.draft.Clone()
	}
	if p.pending != nil {
		v.Pending = p.pending.Clone()
	}
	return v
}
