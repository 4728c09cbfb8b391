//go:build unit

package claim_test

import (
	"strings"
	"testing"
	"time"

	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewClaimBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, claim.StatusPending, actual.Status())
		assert.Nil(t, actual.RefundedAt())
	})

	t.Run("request id validation", func(t *testing.T) {
		_, err := builder.NewClaimBuilder().With(func(b *builder.ClaimBuilder) {
			b.WithRequestID("")
		}).BuildDomain()
		require.ErrorIs(t, err, claim.ErrEmptyRequestID)

		_, err = builder.NewClaimBuilder().With(func(b *builder.ClaimBuilder) {
			b.WithRequestID(strings.Repeat("a", claim.MaxRequestIDLength+1))
		}).BuildDomain()
		require.ErrorIs(t, err, claim.ErrRequestIDTooLong)
	})

	t.Run("MarkRefunded from success succeeds", func(t *testing.T) {
		c, err := builder.NewClaimBuilder().With(func(b *builder.ClaimBuilder) {
			b.WithStatus(claim.StatusSuccess)
		}).BuildDomain()
		require.NoError(t, err)

		adminID := uuid.New()
		err = c.MarkRefunded(&adminID, "fraud", time.Now())
		require.NoError(t, err)

		assert.Equal(t, claim.StatusRefunded, c.Status())
		assert.NotNil(t, c.RefundedAt())
		assert.Equal(t, "fraud", c.RefundReason())
		assert.True(t, c.IsRefunded())
	})

	t.Run("MarkRefunded twice fails", func(t *testing.T) {
		c, err := builder.NewClaimBuilder().With(func(b *builder.ClaimBuilder) {
			b.WithStatus(claim.StatusSuccess)
		}).BuildDomain()
		require.NoError(t, err)

		require.NoError(t, c.MarkRefunded(nil, "fraud", time.Now()))
		err = c.MarkRefunded(nil, "fraud-again", time.Now())
		require.ErrorIs(t, err, claim.ErrAlreadyRefunded)
	})

	t.Run("MarkRefunded from pending fails", func(t *testing.T) {
		c, err := builder.NewClaimBuilder().BuildDomain()
		require.NoError(t, err)

		err = c.MarkRefunded(nil, "fraud", time.Now())
		require.ErrorIs(t, err, claim.ErrInvalidTransition)
	})

	t.Run("Hydrate rejects refunded without refunded_at", func(t *testing.T) {
		_, err := claim.Hydrate(uuid.New(), uuid.New(), "SUMMER2024", claim.StatusRefunded, "req-1", claim.ClientMetadata{}, time.Now(), nil, nil, "fraud")
		require.Error(t, err)
	})
}
