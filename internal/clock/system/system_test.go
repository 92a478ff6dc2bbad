// Package system exercises the real-time clock adapter.
package system

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestClockNowUTC ensures the clock returns UTC timestamps.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	clk := New()
	before := time.Now().UTC().Add(-time.Second)
	got := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	require.Equal(t, time.UTC, got.Location())
	require.False(t, got.Before(before))
	require.False(t, got.After(after))
}

// TestSleepReturnsImmediatelyForZero checks non-positive durations don't block.
func TestSleepReturnsImmediatelyForZero(t *testing.T) {
	t.Parallel()

	clk := New()
	start := time.Now()
	require.NoError(t, clk.Sleep(context.Background(), 0))
	require.NoError(t, clk.Sleep(context.Background(), -time.Second))
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

// TestSleepObservesCancellation checks a canceled context interrupts the sleep.
func TestSleepObservesCancellation(t *testing.T) {
	t.Parallel()

	clk := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- clk.Sleep(ctx, time.Minute) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sleep did not observe cancellation")
	}
}
