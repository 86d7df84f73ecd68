package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/statement-press/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("flaky")
			}
			return nil
		}, fastRetry(5))

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: boom, Retryable: false}
		}, fastRetry(5))

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("down")
		}, fastRetry(2))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 2, calls)
	})

	t.Run("rate limits wait the longest delay", func(t *testing.T) {
		opts := service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     50 * time.Millisecond,
			Multiplier:   2,
		}

		calls := 0
		start := time.Now()
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls == 1 {
				return &RetryableError{Err: fmt.Errorf("%w: slow down", ErrPlaidRateLimit), Retryable: true}
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.GreaterOrEqual(t, time.Since(start), opts.MaxDelay)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error {
			return errors.New("down")
		}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsConfigError(errors.Join(ErrInvalidCapacity)))
	assert.True(t, IsConfigError(ErrColumnScheduleMismatch))
	assert.False(t, IsConfigError(ErrEmptyStatement))
	assert.False(t, IsConfigError(ErrMissingUnitPrice))

	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(ErrEmptyStatement))
	assert.True(t, IsRetryable(ErrPlaidRateLimit))
	assert.ErrorIs(t, ErrPlaidRateLimit, ErrRateLimit)

	err := NewUserError("could not render statement", ErrEmptyStatement)
	assert.ErrorIs(t, err, ErrEmptyStatement)
	assert.Equal(t, "could not render statement: statement has no transactions", err.Error())
}
