// ABOUTME: Tests for the schema-driven table and form renderer.
// ABOUTME: Checks placeholders, cell text, action URLs, and input attributes.

package admin

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/2389/joinlab/internal/resource"
)

func TestRenderTable(t *testing.T) {
	columns := []resource.Column{
		{Key: "dept_id", Label: "ID", Width: "w-16"},
		{Key: "name", Label: "Name"},
	}

	tests := []struct {
		name    string
		rows    []resource.Record
		loading bool
		want    []string
		notWant []string
	}{
		{
			name:    "loading placeholder",
			rows:    []resource.Record{{"dept_id": json.Number("1"), "name": "CS"}},
			loading: true,
			want:    []string{`<td colspan="3" class="px-3 py-6 text-center text-gray-500">Loading...</td>`},
			notWant: []string{">CS<", "No data"},
		},
		{
			name:    "empty placeholder",
			rows:    nil,
			want:    []string{`<td colspan="3" class="px-3 py-6 text-center text-gray-500">No data</td>`},
			notWant: []string{"Loading...", "Edit"},
		},
		{
			name: "rows with actions",
			rows: []resource.Record{
				{"dept_id": json.Number("3"), "name": "Math"},
				{"dept_id": json.Number("4"), "name": nil},
			},
			want: []string{
				`<th class="text-left px-3 py-2 font-medium text-gray-700 w-16">ID</th>`,
				`<th class="text-left px-3 py-2 font-medium text-gray-700">Name</th>`,
				`<td class="px-3 py-2 align-top text-gray-800">Math</td>`,
				`<td class="px-3 py-2 align-top text-gray-800"></td>`,
				`hx-get="/r/dept/edit/3"`,
				`hx-get="/r/dept/delete/4"`,
				`<tr class="bg-white">`,
				`<tr class="bg-gray-50">`,
			},
			notWant: []string{"No data", "Loading...", "<nil>"},
		},
		{
			name:    "escapes cell text",
			rows:    []resource.Record{{"dept_id": json.Number("1"), "name": "<b>R&D</b>"}},
			want:    []string{"&lt;b&gt;R&amp;D&lt;/b&gt;"},
			notWant: []string{"<b>R&D</b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderTable("/r/dept", columns, tt.rows, "dept_id", tt.loading)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("RenderTable() missing %q\ngot: %s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("RenderTable() should not contain %q", nw)
				}
			}
		})
	}
}

func TestRenderTable_RowCount(t *testing.T) {
	rows := []resource.Record{{"x": "a"}, {"x": "b"}, {"x": "c"}}
	got := RenderTable("/r/t", []resource.Column{{Key: "x", Label: "X"}}, rows, "x", false)
	if n := strings.Count(got, "<tr class="); n != 3 {
		t.Errorf("body rows = %d, want 3", n)
	}
}

func TestRenderActions_EscapesID(t *testing.T) {
	got := RenderActions("/r/room", "a/b c")
	if !strings.Contains(got, `hx-get="/r/room/edit/a%2Fb%20c"`) {
		t.Errorf("RenderActions() = %s", got)
	}
}

func TestRenderForm(t *testing.T) {
	schema, _ := resource.Builtin().Get("student")
	draft := resource.Record{"fullname": "Ada \"The\" Countess", "year_num": int64(2), "dept_id": nil}

	got := RenderForm("/r/student", schema.Fields, draft)

	want := []string{
		`<span class="text-sm text-gray-700">Full name *</span>`,
		`type="text" name="fullname" value="Ada &#34;The&#34; Countess"`,
		`type="number" name="year_num" value="2" placeholder="Year (1-4)" required min="1" max="4"`,
		`type="number" name="dept_id" value=""`,
		`hx-post="/r/student/field"`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("RenderForm() missing %q\ngot: %s", w, got)
		}
	}
	if strings.Contains(got, `name="student_id"`) {
		t.Error("RenderForm() rendered the identifier")
	}
	if n := strings.Count(got, "<input"); n != len(schema.Fields) {
		t.Errorf("inputs = %d, want %d", n, len(schema.Fields))
	}
}

func TestRenderForm_TimeAndOptional(t *testing.T) {
	fields := []resource.Field{
		{Key: "start_time", Label: "Start (HH:MM)", Kind: resource.KindTime, Required: true},
		{Key: "note", Label: "Note", Kind: resource.KindText},
	}
	got := RenderForm("/r/sched", fields, nil)

	if !strings.Contains(got, `type="time" name="start_time"`) {
		t.Errorf("time input missing: %s", got)
	}
	if !strings.Contains(got, `<span class="text-sm text-gray-700">Note</span>`) {
		t.Errorf("optional label should have no marker: %s", got)
	}
	if strings.Count(got, " required") != 1 {
		t.Errorf("required attrs = %d, want 1", strings.Count(got, " required"))
	}
}
