package appctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetachedCancelsOnStopChannel(t *testing.T) {
	stopCh := make(chan struct{})
	ctx, cancel := Detached(stopCh, time.Minute)
	defer cancel()

	close(stopCh)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after stopCh closed")
	}
}

func TestDetachedCancelsOnTimeout(t *testing.T) {
	stopCh := make(chan struct{})
	ctx, cancel := Detached(stopCh, 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after its timeout elapsed")
	}
}

func TestDetachedCancelFuncStopsTheContextImmediately(t *testing.T) {
	stopCh := make(chan struct{})
	ctx, cancel := Detached(stopCh, time.Minute)

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("calling cancel directly did not cancel the context")
	}
}
