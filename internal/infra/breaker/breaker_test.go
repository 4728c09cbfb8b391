//go:build unit

package breaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gin-clean-starter/internal/infra/breaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker(t *testing.T) {
	t.Run("trips open after failure threshold", func(t *testing.T) {
		b := breaker.New(breaker.Config{FailureThreshold: 3, SuccessThreshold: 2, CallTimeout: time.Second, OpenDuration: 50 * time.Millisecond})
		boom := errors.New("boom")

		for i := 0; i < 3; i++ {
			_, err := breaker.Execute(context.Background(), b, func(ctx context.Context) (int, error) {
				return 0, boom
			})
			require.ErrorIs(t, err, boom)
		}

		assert.Equal(t, breaker.StateOpen, b.State())

		_, err := breaker.Execute(context.Background(), b, func(ctx context.Context) (int, error) {
			return 1, nil
		})
		require.ErrorIs(t, err, breaker.ErrOpen)
	})

	t.Run("half-open probe recovers to closed", func(t *testing.T) {
		b := breaker.New(breaker.Config{FailureThreshold: 1, SuccessThreshold: 2, CallTimeout: time.Second, OpenDuration: 10 * time.Millisecond})

		_, _ = breaker.Execute(context.Background(), b, func(ctx context.Context) (int, error) {
			return 0, errors.New("boom")
		})
		require.Equal(t, breaker.StateOpen, b.State())

		time.Sleep(15 * time.Millisecond)

		for i := 0; i < 2; i++ {
			_, err := breaker.Execute(context.Background(), b, func(ctx context.Context) (int, error) {
				return 1, nil
			})
			require.NoError(t, err)
		}

		assert.Equal(t, breaker.StateClosed, b.State())
	})
}
