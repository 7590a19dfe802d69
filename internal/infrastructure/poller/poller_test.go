package poller

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunStopsWhenTickReportsStop(t *testing.T) {
	p := New(time.Millisecond, time.Second)

	ticks := 0
	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		ticks++
		return ticks >= 3, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestRunReportsCeilingAsError(t *testing.T) {
	p := New(time.Millisecond, 20*time.Millisecond)

	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrCeilingExceeded) {
		t.Fatalf("Run() error = %v, want ErrCeilingExceeded", err)
	}
}

func TestRunRetriesTransientTickFailures(t *testing.T) {
	p := New(time.Millisecond, time.Second, WithRetry(time.Millisecond, 100*time.Millisecond))

	attempts := 0
	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		attempts++
		if attempts < 3 {
			return false, errors.New("connection refused")
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want transient failures absorbed", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRunSurfacesPersistentTickFailure(t *testing.T) {
	p := New(time.Millisecond, time.Second, WithRetry(time.Millisecond, 10*time.Millisecond))

	tickErr := errors.New("session not found")
	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return false, tickErr
	})
	if !errors.Is(err, tickErr) {
		t.Fatalf("Run() error = %v, want the tick error", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	p := New(time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Run(ctx, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}
