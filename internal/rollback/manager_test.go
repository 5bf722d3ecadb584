package rollback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndo_NothingToUndo(t *testing.T) {
	m := NewManager(nil)
	r := m.Undo()
	assert.False(t, r.Success)
	assert.Equal(t, "nothing to undo", r.Error)
}

func TestUndo_NoteChangeAlwaysSucceeds(t *testing.T) {
	m := NewManager(nil)
	m.Record(Entry{ActionID: 1, Kind: KindNoteChange})

	r := m.Undo()
	assert.True(t, r.Success)
}

func TestUndo_FileWrite_RestoresPreviousBytes(t *testing.T) {
	m := NewManager(nil)
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("new content"), 0644))

	m.Record(Entry{ActionID: 1, Kind: KindFileWrite, Path: path, Before: []byte("old content")})

	r := m.Undo()
	assert.True(t, r.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(data))
}

func TestUndo_FileWrite_DeletesWhenNoPriorFile(t *testing.T) {
	m := NewManager(nil)
	path := filepath.Join(t.TempDir(), "new-file.txt")
	require.NoError(t, os.WriteFile(path, []byte("created"), 0644))

	m.Record(Entry{ActionID: 1, Kind: KindFileWrite, Path: path, Before: nil})

	r := m.Undo()
	assert.True(t, r.Success)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUndo_BrowserEffect_EmitsRevert(t *testing.T) {
	var emitted map[string]any
	m := NewManager(func(effect map[string]any) error {
		emitted = effect
		return nil
	})

	m.Record(Entry{ActionID: 1, Kind: KindBrowserEffect, Effect: map[string]any{"type": "revert_click"}})

	r := m.Undo()
	assert.True(t, r.Success)
	assert.Equal(t, "revert_click", emitted["type"])
}

func TestUndo_BrowserEffect_NoSinkConfigured(t *testing.T) {
	m := NewManager(nil)
	m.Record(Entry{ActionID: 1, Kind: KindBrowserEffect, Effect: map[string]any{"type": "revert_click"}})

	r := m.Undo()
	assert.False(t, r.Success)
}

func TestBlockUndo_PreventsUndo(t *testing.T) {
	m := NewManager(nil)
	m.Record(Entry{ActionID: 1, Kind: KindNoteChange})
	m.BlockUndo(1, "user confirmed destructive action")

	r := m.Undo()
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "user confirmed destructive action")
}

func TestUndo_LIFOOrder(t *testing.T) {
	m := NewManager(nil)
	m.Record(Entry{ActionID: 1, Kind: KindNoteChange})
	m.Record(Entry{ActionID: 2, Kind: KindNoteChange})

	r := m.Undo()
	assert.True(t, r.Success)
	assert.Len(t, m.stack, 1)
	assert.Equal(t, uint64(1), m.stack[0].ActionID)
}
