// Package extension loads browser extension manifests from
// extensions/<id>/extension.json under the config root, per spec.md §6's
// persistence layout. This is a manifest reader only: no plugin
// execution (original_source/extensions/runtime.rs's execution surface
// is explicitly out of scope, per SPEC_FULL.md §3).
package extension

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/os-ghost/core/internal/ghosterr"
)

// Manifest is the on-disk extension.json shape.
type Manifest struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Name    string `json:"name,omitempty"`
}

// Load reads extensions/<id>/extension.json under root.
func Load(root, id string) (Manifest, error) {
	path := filepath.Join(root, "extensions", id, "extension.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, fmt.Errorf("%w: extension manifest %s", ghosterr.ErrNotFound, id)
		}
		return Manifest{}, fmt.Errorf("%w: read extension manifest: %v", ghosterr.ErrIO, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: parse extension manifest: %v", ghosterr.ErrStore, err)
	}
	return m, nil
}

// Discover lists every extension id with a manifest under root's
// extensions/ directory. A missing extensions/ directory returns an
// empty list, not an error.
func Discover(root string) ([]string, error) {
	dir := filepath.Join(root, "extensions")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list extensions dir: %v", ghosterr.ErrIO, err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), "extension.json")); err == nil {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// DefaultHandshakeID returns the id/version of the first discovered
// manifest, falling back to a built-in bundled-extension identity when
// no manifest is present or it fails to load. The MCP bridge does not
// read this pair.
func DefaultHandshakeID(root string) (id, version string) {
	ids, err := Discover(root)
	if err != nil || len(ids) == 0 {
		return "os-ghost-bundled", "0.1.0"
	}
	m, err := Load(root, ids[0])
	if err != nil {
		return "os-ghost-bundled", "0.1.0"
	}
	return m.ID, m.Version
}
