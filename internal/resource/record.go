// ABOUTME: Record type shared by the transport, panel, and renderers.
// ABOUTME: A record is an open key/value mapping whose shape comes from its schema.

package resource

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Record is one backend row keyed by field name.
type Record map[string]any

// Clone returns a shallow copy so drafts never alias list rows.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Text formats the value under key for display. Missing and null values
// render as the empty string.
func (r Record) Text(key string) string {
	return FormatValue(r[key])
}

// FormatValue renders a single record value.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
