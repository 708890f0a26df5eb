// ABOUTME: Schema-driven HTML renderer for resource tables and forms.
// ABOUTME: Generates Tailwind-styled markup with htmx attributes from column and field schemas.

package admin

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/2389/joinlab/internal/resource"
)

// RenderTable renders rows with one column per schema column plus a trailing
// actions column. base is the resource route prefix, e.g. "/r/dept". While
// loading, or when there are no rows, a single placeholder row spans every
// column.
func RenderTable(base string, columns []resource.Column, rows []resource.Record, idKey string, loading bool) string {
	var sb strings.Builder

	sb.WriteString(`<div class="overflow-x-auto rounded-2xl border border-gray-200 shadow-sm">`)
	sb.WriteString(`<table class="min-w-full text-sm">`)
	sb.WriteString(`<thead class="bg-gray-50"><tr>`)

	for _, col := range columns {
		sb.WriteString(fmt.Sprintf(`<th class="%s">%s</th>`,
			html.EscapeString(strings.TrimSpace("text-left px-3 py-2 font-medium text-gray-700 "+col.Width)),
			html.EscapeString(col.Label)))
	}
	sb.WriteString(`<th class="w-32 px-3 py-2"></th>`)
	sb.WriteString(`</tr></thead>`)
	sb.WriteString(`<tbody>`)

	switch {
	case loading:
		placeholderRow(&sb, len(columns)+1, "Loading...")
	case len(rows) == 0:
		placeholderRow(&sb, len(columns)+1, "No data")
	default:
		for i, row := range rows {
			stripe := "bg-white"
			if i%2 == 1 {
				stripe = "bg-gray-50"
			}
			sb.WriteString(fmt.Sprintf(`<tr class="%s">`, stripe))

			for _, col := range columns {
				sb.WriteString(fmt.Sprintf(`<td class="px-3 py-2 align-top text-gray-800">%s</td>`,
					html.EscapeString(row.Text(col.Key))))
			}

			sb.WriteString(`<td class="px-3 py-2"><div class="flex gap-2 justify-end">`)
			sb.WriteString(RenderActions(base, row.Text(idKey)))
			sb.WriteString(`</div></td>`)
			sb.WriteString(`</tr>`)
		}
	}

	sb.WriteString(`</tbody></table></div>`)
	return sb.String()
}

func placeholderRow(sb *strings.Builder, span int, text string) {
	sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d" class="px-3 py-6 text-center text-gray-500">%s</td></tr>`,
		span, html.EscapeString(text)))
}

// RenderActions renders the edit and delete buttons for one row. Both open
// a modal; delete goes through a confirmation prompt first.
func RenderActions(base, id string) string {
	escaped := html.EscapeString(base + "/")
	rid := html.EscapeString(url.PathEscape(id))
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<button hx-get="%sedit/%s" hx-target="#panel" hx-swap="outerHTML" class="px-2 py-1 rounded-lg border hover:bg-gray-100">Edit</button>`,
		escaped, rid))
	sb.WriteString(fmt.Sprintf(`<button hx-get="%sdelete/%s" hx-target="#panel" hx-swap="outerHTML" class="px-2 py-1 rounded-lg border border-red-300 text-red-700 hover:bg-red-50">Delete</button>`,
		escaped, rid))
	return sb.String()
}

// RenderForm renders one labeled input per field. Values come from draft;
// null and missing values render empty. Each input posts its value to the
// draft when it changes.
func RenderForm(base string, fields []resource.Field, draft resource.Record) string {
	var sb strings.Builder

	sb.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-4">`)
	for _, f := range fields {
		label := f.Label
		if f.Required {
			label += " *"
		}

		sb.WriteString(`<label class="flex flex-col gap-1">`)
		sb.WriteString(fmt.Sprintf(`<span class="text-sm text-gray-700">%s</span>`, html.EscapeString(label)))
		sb.WriteString(fmt.Sprintf(`<input class="rounded-xl border px-3 py-2 focus:outline-none focus:ring" type="%s" name="%s" value="%s" placeholder="%s"%s%s%s hx-post="%sfield" hx-trigger="change" hx-swap="none">`,
			inputType(f.Kind),
			html.EscapeString(f.Key),
			html.EscapeString(draft.Text(f.Key)),
			html.EscapeString(f.Label),
			requiredAttr(f.Required),
			boundAttr("min", f.Min),
			boundAttr("max", f.Max),
			html.EscapeString(base+"/")))
		sb.WriteString(`</label>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// Helper functions

func inputType(k resource.Kind) string {
	switch k {
	case resource.KindNumber:
		return "number"
	case resource.KindTime:
		return "time"
	default:
		return "text"
	}
}

func requiredAttr(required bool) string {
	if required {
		return " required"
	}
	return ""
}

func boundAttr(name string, v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, strconv.FormatFloat(*v, 'f', -1, 64))
}
