package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", config.MaxRetries)
	}
	if config.InitialInterval != 1*time.Second {
		t.Errorf("InitialInterval = %v, want 1s", config.InitialInterval)
	}
	if config.MaxInterval != 30*time.Second {
		t.Errorf("MaxInterval = %v, want 30s", config.MaxInterval)
	}
	if config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", config.Multiplier)
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := Do(context.Background(), DefaultConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	config := &Config{
		MaxRetries:      5,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
	}

	calls := 0
	result := Do(context.Background(), config, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	config := &Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}

	opErr := errors.New("still failing")
	result := Do(context.Background(), config, func(ctx context.Context) error {
		return opErr
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	if !errors.Is(result.LastError, opErr) {
		t.Errorf("LastError = %v, want %v", result.LastError, opErr)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	config := &Config{
		MaxRetries:      5,
		InitialInterval: time.Millisecond,
	}

	opErr := errors.New("bad input")
	calls := 0
	result := Do(context.Background(), config, func(ctx context.Context) error {
		calls++
		return Permanent(opErr)
	})

	if !errors.Is(result.Err, opErr) {
		t.Errorf("Err = %v, want %v", result.Err, opErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on permanent errors)", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Do(ctx, DefaultConfig(), func(ctx context.Context) error {
		return errors.New("should not matter")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
}

func TestDoWithCallbackInvokedBetweenAttempts(t *testing.T) {
	config := &Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
	}

	var callbackAttempts []int
	DoWithCallback(context.Background(), config, func(ctx context.Context) error {
		return errors.New("fail")
	}, func(attempt int, err error, nextInterval time.Duration) {
		callbackAttempts = append(callbackAttempts, attempt)
	})

	// Callback fires before each wait, not after the final attempt
	if len(callbackAttempts) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(callbackAttempts))
	}
	if callbackAttempts[0] != 1 || callbackAttempts[1] != 2 {
		t.Errorf("callback attempts = %v, want [1 2]", callbackAttempts)
	}
}

func TestCalculateIntervalCapped(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	})

	if got := r.calculateInterval(10); got != 5*time.Second {
		t.Errorf("calculateInterval(10) = %v, want capped at 5s", got)
	}
}
