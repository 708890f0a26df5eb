// ABOUTME: SQL helpers for building LIKE filters over stored paths.
// ABOUTME: Escapes wildcard characters so user input only matches literally.

package store

import "strings"

// likeEscaper rewrites in a single pass, so an escape it inserts is never
// escaped again.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeSQLLike escapes %, _, and the escape character itself. Queries using
// it must say ESCAPE '\'.
func escapeSQLLike(s string) string {
	return likeEscaper.Replace(s)
}

// prefixPattern is a LIKE pattern matching values that start with prefix.
func prefixPattern(prefix string) string {
	return escapeSQLLike(prefix) + "%"
}
