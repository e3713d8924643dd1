package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorStopBeforeAnyStep(t *testing.T) {
	inner := NewInner("task", "", Tunables{}, nil, nil, &scriptedLLMClient{}, testLogger(t))
	actor := NewActor(inner)

	assert.True(t, actor.IsRunning())

	err := actor.Stop()
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !actor.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestActorStopIsSafeToCallTwice(t *testing.T) {
	inner := NewInner("task", "", Tunables{}, nil, nil, &scriptedLLMClient{}, testLogger(t))
	actor := NewActor(inner)

	require.NoError(t, actor.Stop())
	// A second Stop races the now-dead loop goroutine; the closed
	// response channel path must still return a nil error rather than
	// blocking for the full stopReplyDeadline.
	err := actor.Stop()
	assert.NoError(t, err)
}
