//go:build unit

package voucher_test

import (
	"testing"
	"time"

	"gin-clean-starter/internal/domain/voucher"
	"gin-clean-starter/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.VoucherBuilder)
	errIs  error
}

func TestVoucherCode(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewVoucherBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.True(t, actual.Active())
		assert.Equal(t, 0, actual.UsageCount())

		ok, reason := actual.EligibleFor(uuid.New(), time.Now())
		assert.True(t, ok)
		assert.Equal(t, voucher.ReasonNone, reason)
	})

	t.Run("code format validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "valid code ok", mutate: func(b *builder.VoucherBuilder) { b.WithCode("FLASH20") }},
			{name: "too short rejected", mutate: func(b *builder.VoucherBuilder) { b.WithCode("AB") }, errIs: voucher.ErrInvalidCode},
			{name: "lowercase rejected", mutate: func(b *builder.VoucherBuilder) { b.WithCode("summer2024") }, errIs: voucher.ErrInvalidCode},
		})
	})

	t.Run("usage limit validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "positive limit ok", mutate: func(b *builder.VoucherBuilder) { b.WithUsageLimit(1) }},
			{name: "zero limit rejected", mutate: func(b *builder.VoucherBuilder) { b.WithUsageLimit(0) }, errIs: voucher.ErrNonPositiveUsageLimit},
		})
	})

	t.Run("EligibleFor usage-limit-reached", func(t *testing.T) {
		v, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithUsageLimit(1)
			b.WithUsageCount(1)
		}).BuildDomain()
		require.NoError(t, err)

		ok, reason := v.EligibleFor(uuid.New(), time.Now())
		assert.False(t, ok)
		assert.Equal(t, voucher.ReasonExhausted, reason)
	})

	t.Run("EligibleFor expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		v, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithExpiresAt(past)
		}).BuildDomain()
		require.NoError(t, err)

		ok, reason := v.EligibleFor(uuid.New(), time.Now())
		assert.False(t, ok)
		assert.Equal(t, voucher.ReasonExpired, reason)
	})

	t.Run("EligibleFor not yet valid", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		v, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithValidFrom(future)
		}).BuildDomain()
		require.NoError(t, err)

		ok, reason := v.EligibleFor(uuid.New(), time.Now())
		assert.False(t, ok)
		assert.Equal(t, voucher.ReasonNotYetValid, reason)
	})

	t.Run("EligibleFor restricted allow-list", func(t *testing.T) {
		allowed := uuid.New()
		v, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithAllowedUsers(allowed)
		}).BuildDomain()
		require.NoError(t, err)

		ok, reason := v.EligibleFor(uuid.New(), time.Now())
		assert.False(t, ok)
		assert.Equal(t, voucher.ReasonNotAllowedUser, reason)

		ok, reason = v.EligibleFor(allowed, time.Now())
		assert.True(t, ok)
		assert.Equal(t, voucher.ReasonNone, reason)
	})

	t.Run("hydrate rejects usage count above limit", func(t *testing.T) {
		_, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithUsageLimit(1)
			b.WithUsageCount(2)
		}).BuildDomain()
		require.ErrorIs(t, err, voucher.ErrUsageCountExceedsLimit)
	})

	t.Run("hydrate rejects expires_at before valid_from", func(t *testing.T) {
		from := time.Now()
		before := from.Add(-time.Hour)
		_, err := builder.NewVoucherBuilder().With(func(b *builder.VoucherBuilder) {
			b.WithUsageCount(1)
			b.WithValidFrom(from)
			b.WithExpiresAt(before)
		}).BuildDomain()
		require.ErrorIs(t, err, voucher.ErrExpiresBeforeValidFrom)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewVoucherBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
