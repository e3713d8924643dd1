package cleanup

import (
	"testing"

	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/connection"
	"github.com/browserd/browserd/internal/research"
	"github.com/stretchr/testify/assert"
)

func TestHookCleansUpBothRegistries(t *testing.T) {
	researchReg := research.NewRegistry(nil, nil, make(chan struct{}))
	agentReg := agent.NewRegistry(nil, nil, nil, make(chan struct{}))

	researchReg.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "q", research.DefaultOptions())
	agentReg.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "task", "", 1, agent.Tunables{})

	hook := Hook(researchReg, agentReg, nil)
	hook("conn-1")

	assert.Empty(t, researchReg.List("conn-1"))
	assert.Empty(t, agentReg.List("conn-1"))
}

func TestHookIsANoOpForAnEmptyConnectionID(t *testing.T) {
	researchReg := research.NewRegistry(nil, nil, make(chan struct{}))
	agentReg := agent.NewRegistry(nil, nil, nil, make(chan struct{}))
	researchReg.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "q", research.DefaultOptions())

	hook := Hook(researchReg, agentReg, nil)
	hook("")

	assert.Len(t, researchReg.List("conn-1"), 1)
}

func TestHookToleratesNilRegistries(t *testing.T) {
	hook := Hook(nil, nil, nil)
	assert.NotPanics(t, func() { hook("conn-1") })
}

func TestHookIsIdempotent(t *testing.T) {
	researchReg := research.NewRegistry(nil, nil, make(chan struct{}))
	agentReg := agent.NewRegistry(nil, nil, nil, make(chan struct{}))
	researchReg.FindOrCreate(connection.Key{ConnID: "conn-1", Number: 1}, "q", research.DefaultOptions())

	hook := Hook(researchReg, agentReg, nil)
	hook("conn-1")
	assert.NotPanics(t, func() { hook("conn-1") })
}
