package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/service"
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
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		failWith  error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first try", failures: 0, attempts: 3, wantCalls: 1},
		{name: "succeeds after transient failures", failures: 2, failWith: errBoom, attempts: 3, wantCalls: 3},
		{name: "exhausts attempts", failures: 5, failWith: errBoom, attempts: 3, wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "permanent error stops immediately", failures: 5, failWith: Permanent(errBoom), attempts: 3, wantCalls: 1, wantErr: errBoom},
		{name: "unauthorized stops immediately", failures: 5, failWith: ErrUnauthorized, attempts: 3, wantCalls: 1, wantErr: ErrUnauthorized},
		{name: "wrapped cancellation stops immediately", failures: 5, failWith: fmt.Errorf("request: %w", context.Canceled), attempts: 3, wantCalls: 1, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			}, fastRetry(tt.attempts))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return errors.New("transient")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_HonorsRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()

	err := WithRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return RetryAfter(ErrRateLimit, time.Hour)
		}
		return nil
	}, service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithRetry_RetryAfterKeepsCause(t *testing.T) {
	err := WithRetry(context.Background(), func() error {
		return RetryAfter(ErrRateLimit, time.Millisecond)
	}, fastRetry(2))

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrRateLimit)
	assert.True(t, IsRetryable(RetryAfter(errors.New("x"), time.Second)))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "source unavailable", err: ErrSourceUnavailable, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
		{name: "permanent wrapper", err: Permanent(errors.New("x")), want: false},
		{name: "wrapped canceled", err: fmt.Errorf("fetch: %w", context.Canceled), want: false},
		{name: "unauthorized", err: fmt.Errorf("%w: status 401", ErrUnauthorized), want: false},
		{name: "malformed payload", err: ErrMalformedPayload, want: false},
		{name: "invalid config", err: ErrInvalidConfig, want: false},
		{name: "plain error", err: errors.New("x"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save receipts", inner)

	assert.Equal(t, "could not save receipts: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not save receipts", userErr.UserMessage)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	_, err = ParseLevel("chatty")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
