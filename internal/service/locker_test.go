package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_SerialisesSameKey(t *testing.T) {
	var k keyedLocker
	ctx := context.Background()

	unlock, err := k.acquire(ctx, "a")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := k.acquire(ctx, "a")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired after unlock")
	}
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	var k keyedLocker
	ctx := context.Background()

	ua, err := k.acquire(ctx, "a")
	require.NoError(t, err)
	defer ua()

	ub, err := k.acquire(ctx, "b")
	require.NoError(t, err)
	ub()
}

func TestKeyedLocker_CancelWhileWaiting(t *testing.T) {
	var k keyedLocker

	unlock, err := k.acquire(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.acquire(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	k.mu.Lock()
	assert.Empty(t, k.slots, "released slots are dropped")
	k.mu.Unlock()
}
