package downloader

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingUpdater struct {
	calls atomic.Int32
}

func (c *countingUpdater) RunUpdate(context.Context) {
	c.calls.Add(1)
}

func TestStartPeriodicUpdater(t *testing.T) {
	u := &countingUpdater{}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	StartPeriodicUpdater(ctx, 10*time.Millisecond, u)

	assert.GreaterOrEqual(t, u.calls.Load(), int32(1))
}

func TestStartPeriodicUpdaterDisabled(t *testing.T) {
	u := &countingUpdater{}

	done := make(chan struct{})
	go func() {
		StartPeriodicUpdater(context.Background(), 0, u)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a zero interval must return immediately")
	}
	assert.Zero(t, u.calls.Load())
}
