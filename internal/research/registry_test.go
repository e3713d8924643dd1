package research

import (
	"testing"

	"github.com/browserd/browserd/internal/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	stopCh := make(chan struct{})
	r := NewRegistry(nil, nil, stopCh)
	return r
}

func TestRegistryFindOrCreate(t *testing.T) {
	r := newTestRegistry()
	key := connection.Key{ConnID: "conn-1", Number: 1}

	first := r.FindOrCreate(key, "query one", DefaultOptions())
	second := r.FindOrCreate(key, "query one", DefaultOptions())

	assert.Same(t, first, second, "the same key must return the same session instance")
}

func TestRegistryReadAbsentKey(t *testing.T) {
	r := newTestRegistry()
	_, _, _, ok := r.Read(connection.Key{ConnID: "nobody", Number: 1})
	assert.False(t, ok)
}

func TestRegistryList(t *testing.T) {
	r := newTestRegistry()
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 3}, "q", DefaultOptions())
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "q", DefaultOptions())
	r.FindOrCreate(connection.Key{ConnID: "conn-2", Number: 9}, "q", DefaultOptions())

	got := r.List("conn-1")
	require.Len(t, got, 2)
	assert.Equal(t, []uint32{1, 3}, got)
}

func TestRegistryKill(t *testing.T) {
	r := newTestRegistry()
	key := connection.Key{ConnID: "conn-1", Number: 1}
	r.FindOrCreate(key, "q", DefaultOptions())

	assert.True(t, r.Kill(key))
	_, completed, _, ok := r.Read(key)
	require.True(t, ok)
	assert.True(t, completed)

	assert.False(t, r.Kill(connection.Key{ConnID: "nope", Number: 1}))
}

func TestRegistryCleanupConnection(t *testing.T) {
	r := newTestRegistry()
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "q", DefaultOptions())
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 2}, "q", DefaultOptions())
	r.FindOrCreate(connection.Key{ConnID: "conn-2", Number: 1}, "q", DefaultOptions())

	r.CleanupConnection("conn-1")

	assert.Empty(t, r.List("conn-1"))
	assert.Len(t, r.List("conn-2"), 1)

	// idempotent
	r.CleanupConnection("conn-1")
}
