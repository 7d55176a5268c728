package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	t.Run("zero duration returns immediately", func(t *testing.T) {
		t.Parallel()
		if err := WaitFor(context.Background(), 0); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("zero duration reports cancellation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		started := time.Now()
		if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if time.Since(started) > time.Second {
			t.Fatalf("wait was not interrupted")
		}
	})

	t.Run("short wait completes", func(t *testing.T) {
		t.Parallel()
		if err := WaitFor(context.Background(), time.Millisecond); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})
}
