package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  attempts,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0

	err := NewBackoff(fastConfig(3)).Retry(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryEventualSuccess(t *testing.T) {
	calls := 0

	err := NewBackoff(fastConfig(5)).Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	permanent := fmt.Errorf("permanent")

	err := NewBackoff(fastConfig(4)).Retry(context.Background(), func() error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 4, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := fastConfig(10)
	config.InitialDelay = time.Second
	config.MaxDelay = time.Second

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- NewBackoff(config).Retry(ctx, func() error {
			calls++
			return fmt.Errorf("keep trying")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop on cancellation")
	}
}

func TestCalculateDelayGrowsAndCaps(t *testing.T) {
	b := NewBackoff(BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		MaxAttempts:  10,
	})

	assert.Equal(t, 100*time.Millisecond, b.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, b.calculateDelay(2))
	assert.Equal(t, 400*time.Millisecond, b.calculateDelay(3))
	assert.Equal(t, time.Second, b.calculateDelay(5), "capped at MaxDelay")
}

func TestCalculateDelayJitterBounds(t *testing.T) {
	b := NewBackoff(BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		MaxAttempts:  10,
		Jitter:       true,
	})

	for i := 0; i < 50; i++ {
		delay := b.calculateDelay(2)
		assert.GreaterOrEqual(t, delay, 150*time.Millisecond)
		assert.LessOrEqual(t, delay, 250*time.Millisecond)
	}
}

func TestDefaultBackoffConfig(t *testing.T) {
	config := DefaultBackoffConfig()

	assert.Equal(t, 500*time.Millisecond, config.InitialDelay)
	assert.Equal(t, 30*time.Second, config.MaxDelay)
	assert.Equal(t, 5, config.MaxAttempts)
	assert.True(t, config.Jitter)
}
