// ABOUTME: Resource detection for backend call logging.
// ABOUTME: Determines which resource a request belongs to based on URL path.

package logging

import "strings"

// ResourceFromPath returns the first path segment after apiPath, or ""
// when path is outside it.
func ResourceFromPath(apiPath, path string) string {
	prefix := "/" + strings.Trim(apiPath, "/")
	if prefix == "/" {
		prefix = ""
	}
	rest, ok := strings.CutPrefix(path, prefix+"/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}
