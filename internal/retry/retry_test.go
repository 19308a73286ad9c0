package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func stubSleep(t *testing.T) *int {
	t.Helper()
	count := 0
	orig := sleep
	sleep = func(time.Duration) { count++ }
	t.Cleanup(func() { sleep = orig })
	return &count
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	sleeps := stubSleep(t)

	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, 3, time.Second)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if *sleeps != 0 {
		t.Errorf("expected 0 sleeps, got %d", *sleeps)
	}
}

func TestDoSucceedsOnFinalAttempt(t *testing.T) {
	sleeps := stubSleep(t)

	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, time.Second)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	// Exactly one sleep between each failed attempt and the next.
	if *sleeps != 2 {
		t.Errorf("expected 2 sleeps, got %d", *sleeps)
	}
}

func TestDoExhausted(t *testing.T) {
	sleeps := stubSleep(t)

	boom := errors.New("boom")
	calls := 0
	err := Do(func() error {
		calls++
		return boom
	}, 3, time.Second)

	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if *sleeps != 2 {
		t.Errorf("expected 2 sleeps, got %d", *sleeps)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, boom) {
		t.Error("exhausted error should wrap the final failure")
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	stubSleep(t)

	calls := 0
	_ = Do(func() error {
		calls++
		return errors.New("nope")
	}, 0, 0)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	stubSleep(t)

	calls := 0
	got, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, 3, time.Second)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
}

func TestDoCtxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := DoCtx(ctx, func() error {
		calls++
		return errors.New("transient")
	}, 3, 10*time.Millisecond)

	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
