// ABOUTME: Schema definitions for the generic admin panel.
// ABOUTME: Each resource declares its columns, form fields, and identifier key.

package resource

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the input kind of a form field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindTime   Kind = "time"
)

// Schema describes one resource managed by the admin UI.
type Schema struct {
	Name    string   `json:"name"`  // "student"
	Label   string   `json:"label"` // "Students"
	Path    string   `json:"path"`  // API path segment
	ID      string   `json:"id"`    // identifier field, e.g. "student_id"
	Columns []Column `json:"columns"`
	Fields  []Field  `json:"fields"`
}

// Column is one cell in the list view.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Width string `json:"width,omitempty"` // CSS width hint
}

// Field is one input in the create/edit form.
type Field struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"type"`
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Coerce converts raw form input into the value stored in a draft.
// Number fields map "" to nil and numeric text to int64 or float64.
// Text that does not parse, NaN and infinities included, is kept as-is so
// the backend can reject it.
func (f Field) Coerce(raw string) any {
	if f.Kind != KindNumber {
		return raw
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
		return x
	}
	return raw
}

// FieldByKey returns the form field with the given key.
func (s Schema) FieldByKey(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func bound(v float64) *float64 {
	return &v
}
