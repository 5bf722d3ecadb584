package mcpserver

import (
	"fmt"

	"github.com/os-ghost/core/internal/ghosterr"
)

// Resource names, per spec.md §4.9.
const (
	ResourceCurrentPage = "browser://current-page"
	ResourceHistory     = "browser://history"
	ResourceTopSites    = "browser://top-sites"
)

// Read returns a JSON-ready snapshot of the resource named by uri.
func (s *Server) Read(uri string) (any, error) {
	switch uri {
	case ResourceCurrentPage:
		return s.state.CurrentPage(), nil
	case ResourceHistory:
		return s.state.History(), nil
	case ResourceTopSites:
		return s.state.TopSites(), nil
	default:
		return nil, fmt.Errorf("%w: unknown resource %q", ghosterr.ErrNotFound, uri)
	}
}
