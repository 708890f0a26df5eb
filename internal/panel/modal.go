// ABOUTME: Create/edit modal lifecycle and delete confirmation for a panel.
// ABOUTME: Drafts live only while a modal is open and are dropped on close.

package panel

import (
	"context"
	"fmt"

	"github.com/2389/joinlab/internal/resource"
)

// OpenCreate opens the create modal with an empty draft.
func (p *Panel) OpenCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeCreating
	p.draft = resource.Record{}
	p.editID = ""
	p.pending = nil
}

// OpenEdit opens the edit modal with a draft copied from row. The row's
// identifier is captured now and addresses the later update.
func (p *Panel) OpenEdit(row resource.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeEditing
	p.draft = row.Clone()
	p.editID = row.Text(p.schema.ID)
	p.pending = nil
}

// Cancel closes any open modal and discards the draft.
func (p *Panel) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeModal()
}

func (p *Panel) closeModal() {
	p.mode = ModeNone
	p.draft = nil
	p.editID = ""
	p.pending = nil
}

// SetField binds raw input for one form field into the draft.
func (p *Panel) SetField(key, raw string) error {
	f, ok := p.schema.FieldByKey(key)
	if !ok {
		return fmt.Errorf("%s has no form field %q", p.schema.Name, key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeCreating && p.mode != ModeEditing {
		return ErrNoModal
	}
	p.draft[key] = f.Coerce(raw)
	return nil
}

// BindForm binds every schema field present in values. Keys that are not
// form fields are ignored.
func (p *Panel) BindForm(values map[string]string) error {
	for _, f := range p.schema.Fields {
		raw, ok := values[f.Key]
		if !ok {
			continue
		}
		if err := p.SetField(f.Key, raw); err != nil {
			return err
		}
	}
	return nil
}

// Submit sends the draft. Required fields are not checked here; the backend
// decides. On success the modal closes and the list reloads; on failure the
// modal stays open with its draft.
func (p *Panel) Submit(ctx context.Context) error {
	p.mu.Lock()
	mode := p.mode
	draft := p.draft.Clone()
	id := p.editID
	p.mu.Unlock()

	var (
		err     error
		success string
	)
	switch mode {
	case ModeCreating:
		_, err = p.transport.Create(ctx, p.schema.Path, draft)
		success = "Created"
		if err != nil {
			p.push(err, "Create failed")
		}
	case ModeEditing:
		_, err = p.transport.Update(ctx, p.schema.Path, id, draft)
		success = "Updated"
		if err != nil {
			p.push(err, "Update failed")
		}
	default:
		return ErrNoModal
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.closeModal()
	p.mu.Unlock()

	p.notify(success)
	return p.reload(ctx)
}

// AskDelete marks row as waiting for a yes/no answer. It only records the
// question; nothing is sent until Delete runs with a confirmation.
func (p *Panel) AskDelete(row resource.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeConfirming
	p.draft = nil
	p.editID = ""
	p.pending = row.Clone()
}

// Delete asks confirm and, on yes, deletes row by its identifier. A no
// answer sends nothing.
func (p *Panel) Delete(ctx context.Context, row resource.Record, confirm Confirm) error {
	ok := confirm != nil && confirm(DeletePrompt)

	p.mu.Lock()
	if p.mode == ModeConfirming {
		p.closeModal()
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}

	if err := p.transport.Delete(ctx, p.schema.Path, row.Text(p.schema.ID)); err != nil {
		p.push(err, "Delete failed")
		return err
	}
	p.notify("Deleted")
	return p.reload(ctx)
}

// reload runs Load after a mutation. A superseded reload is not an error for
// the mutation that triggered it.
func (p *Panel) reload(ctx context.Context) error {
	if err := p.Load(ctx); err != nil && err != ErrSuperseded {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}
