package domain

import (
	"strconv"
	"strings"
)

// Anchor is a weak, non-owning handle to a node in the rendered document,
// expressed as the child-index path from the document root. It exists for
// later scroll/highlight correlation and must be re-resolved against the
// current document before use; it is never assumed stable across scans.
type Anchor struct {
	// Path is the sequence of child indices from the root element.
	Path []int `json:"path"`
}

// IsZero reports whether the anchor carries no path.
func (a Anchor) IsZero() bool {
	return len(a.Path) == 0
}

// String renders the path in a compact slash-separated form.
func (a Anchor) String() string {
	if a.IsZero() {
		return ""
	}
	parts := make([]string, len(a.Path))
	for i, idx := range a.Path {
		parts[i] = strconv.Itoa(idx)
	}
	return "/" + strings.Join(parts, "/")
}
