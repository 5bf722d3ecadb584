package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesSchema(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.DB())
}

func TestSetGet(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("policy", "privacy", []byte("snapshot-1")))

	v, ok, err := s.Get("policy", "privacy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("snapshot-1"), v)
}

func TestGet_MissingKey(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("policy", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_Overwrites(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("queue", "action-1", []byte("pending")))
	require.NoError(t, s.Set("queue", "action-1", []byte("approved")))

	v, ok, err := s.Get("queue", "action-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("approved"), v)
}

func TestDelete(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("queue", "action-1", []byte("pending")))
	require.NoError(t, s.Delete("queue", "action-1"))

	_, ok, err := s.Get("queue", "action-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_MissingKeyIsNoop(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Delete("queue", "never-existed"))
}

func TestListKeysAndGetAll(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("identity", "install-id", []byte("abc")))
	require.NoError(t, s.Set("identity", "created-at", []byte("2026-01-01")))
	require.NoError(t, s.Set("policy", "privacy", []byte("snapshot")))

	keys, err := s.ListKeys("identity")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"install-id", "created-at"}, keys)

	all, err := s.GetAll("identity")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"install-id": []byte("abc"),
		"created-at": []byte("2026-01-01"),
	}, all)
}

func TestClearTree(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("identity", "a", []byte("1")))
	require.NoError(t, s.Set("identity", "b", []byte("2")))
	require.NoError(t, s.Set("policy", "c", []byte("3")))

	require.NoError(t, s.ClearTree("identity"))

	keys, err := s.ListKeys("identity")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// unrelated tree untouched
	v, ok, err := s.Get("policy", "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
}

func TestUpdate_CreatesWhenAbsent(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.Update("queue", "counter", func(old []byte, present bool) ([]byte, bool) {
		assert.False(t, present)
		return []byte("1"), false
	})
	require.NoError(t, err)

	v, ok, err := s.Get("queue", "counter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestUpdate_ReadModifyWrite(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("queue", "counter", []byte("1")))

	err = s.Update("queue", "counter", func(old []byte, present bool) ([]byte, bool) {
		require.True(t, present)
		require.Equal(t, []byte("1"), old)
		return []byte("2"), false
	})
	require.NoError(t, err)

	v, _, err := s.Get("queue", "counter")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestUpdate_DeleteKey(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("queue", "counter", []byte("1")))

	err = s.Update("queue", "counter", func(old []byte, present bool) ([]byte, bool) {
		return nil, true
	})
	require.NoError(t, err)

	_, ok, err := s.Get("queue", "counter")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlush(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("identity", "a", []byte("1")))
	assert.NoError(t, s.Flush())
}

func TestTreeStats(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("identity", "a", []byte("1")))
	require.NoError(t, s.Set("identity", "b", []byte("2")))
	require.NoError(t, s.Set("policy", "c", []byte("3")))

	stats, err := s.TreeStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["identity"])
	assert.Equal(t, int64(1), stats["policy"])
}

func TestGetSchemaVersion(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.DB()))
}
