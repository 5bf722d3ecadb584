package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_GeneratesFreshUUIDWhenAbsent(t *testing.T) {
	rec, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.InstallID)
}

func TestLoad_PersistsAcrossCalls(t *testing.T) {
	dir := t.TempDir()

	first, err := Load(dir)
	require.NoError(t, err)

	second, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, first.InstallID, second.InstallID)
}
