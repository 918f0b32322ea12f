package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("boom")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		calls++
		return errors.New("siempre falla")
	})

	assert.EqualError(t, err, "siempre falla")
	assert.Equal(t, 3, calls)
}

func TestRetry_SingleAttemptMeansNoRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 0, time.Hour, func(attempt int) error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "sin reintentos no debe esperar el delay")
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func(attempt int) error {
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
