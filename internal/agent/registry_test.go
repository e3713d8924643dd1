package agent

import (
	"testing"

	"github.com/browserd/browserd/internal/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgentRegistry() *Registry {
	return NewRegistry(nil, &scriptedLLMClient{}, nil, make(chan struct{}))
}

func TestAgentRegistryFindOrCreate(t *testing.T) {
	r := newTestAgentRegistry()
	key := connection.Key{ConnID: "conn-1", Number: 1}

	first := r.FindOrCreate(key, "task", "", 5, Tunables{})
	second := r.FindOrCreate(key, "task", "", 5, Tunables{})

	assert.Same(t, first, second)
}

func TestAgentRegistryReadAbsentKey(t *testing.T) {
	r := newTestAgentRegistry()
	_, _, _, ok := r.Read(connection.Key{ConnID: "nobody", Number: 1})
	assert.False(t, ok)
}

func TestAgentRegistryList(t *testing.T) {
	r := newTestAgentRegistry()
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 2}, "task", "", 1, Tunables{})
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "task", "", 1, Tunables{})
	r.FindOrCreate(connection.Key{ConnID: "conn-2", Number: 7}, "task", "", 1, Tunables{})

	got := r.List("conn-1")
	require.Len(t, got, 2)
	assert.Equal(t, []uint32{1, 2}, got)
}

func TestAgentRegistryKill(t *testing.T) {
	r := newTestAgentRegistry()
	key := connection.Key{ConnID: "conn-1", Number: 1}
	r.FindOrCreate(key, "task", "", 1, Tunables{})

	assert.True(t, r.Kill(key))
	assert.False(t, r.Kill(connection.Key{ConnID: "nope", Number: 1}))
}

func TestAgentRegistryCleanupConnection(t *testing.T) {
	r := newTestAgentRegistry()
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "task", "", 1, Tunables{})
	r.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 2}, "task", "", 1, Tunables{})
	r.FindOrCreate(connection.Key{ConnID: "conn-2", Number: 1}, "task", "", 1, Tunables{})

	r.CleanupConnection("conn-1")

	assert.Empty(t, r.List("conn-1"))
	assert.Len(t, r.List("conn-2"), 1)

	// idempotent
	r.CleanupConnection("conn-1")
}
