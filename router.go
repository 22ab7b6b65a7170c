package slowserve

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Router maps request targets to file paths under a root directory.
type Router struct {
	root string
}

// NewRouter creates a Router serving files from root.
func NewRouter(root string) Router {
	return Router{root: root}
}

// StripQuery removes everything from the first '?' or '#' onward.
func StripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Clean returns the decoded request path, always absolute and free of ".." elements.
func Clean(raw string) string {
	p := StripQuery(raw)
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return path.Clean("/" + p)
}

// Resolve returns the filesystem path for the request target.
// The cleaned path is rooted before joining, so it can not climb above the root.
// Symbolic links inside the root are not resolved.
func (r Router) Resolve(raw string) string {
	return filepath.Join(r.root, filepath.FromSlash(Clean(raw)))
}
