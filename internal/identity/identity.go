// Package identity persists a stable per-install UUID in the config
// root (original_source/data/identity.rs, per SPEC_FULL.md §3's
// supplement). cmd/ghost loads and logs it at boot; it does not
// namespace ledger/session data and is not sent over the MCP bridge.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
)

const fileName = "identity.json"

// Record is the on-disk identity document.
type Record struct {
	InstallID string `json:"install_id"`
}

// Load reads the identity record from dir, creating one with a fresh
// UUID if it doesn't exist yet.
func Load(dir string) (Record, error) {
	path := filepath.Join(dir, fileName)

	data, err := os.ReadFile(path)
	if err == nil {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return Record{}, fmt.Errorf("%w: parse identity: %v", ghosterr.ErrStore, err)
		}
		return rec, nil
	}
	if !os.IsNotExist(err) {
		return Record{}, fmt.Errorf("%w: read identity: %v", ghosterr.ErrIO, err)
	}

	rec := Record{InstallID: uuid.NewString()}
	if err := save(dir, rec); err != nil {
		return Record{}, err
	}
	logging.Identity("generated new install identity %s", rec.InstallID)
	return rec, nil
}

func save(dir string, rec Record) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create identity dir: %v", ghosterr.ErrIO, err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal identity: %v", ghosterr.ErrStore, err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0644); err != nil {
		return fmt.Errorf("%w: write identity: %v", ghosterr.ErrIO, err)
	}
	return nil
}
