//go:build unit || e2e

package builder

import (
	"time"

	"gin-clean-starter/internal/domain/voucher"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherBuilder struct {
	Code         string
	UsageLimit   int
	UsageCount   int
	ValidFrom    *time.Time
	ExpiresAt    *time.Time
	AllowedUsers []uuid.UUID
	PercentOff   decimal.Decimal
}

func NewVoucherBuilder() *VoucherBuilder {
	return &VoucherBuilder{
		Code:       "SUMMER2024",
		UsageLimit: 1000,
		UsageCount: 0,
		PercentOff: decimal.NewFromInt(10),
	}
}

func (b *VoucherBuilder) With(mutate func(*VoucherBuilder)) *VoucherBuilder {
	mutate(b)
	return b
}

func (b *VoucherBuilder) BuildDomain() (*voucher.VoucherCode, error) {
	code, err := voucher.NewCode(b.Code)
	if err != nil {
		return nil, err
	}

	percentOff := b.PercentOff
	discount, err := voucher.NewPercentageDiscount(percentOff)
	if err != nil {
		return nil, err
	}

	if b.UsageCount == 0 {
		return voucher.NewVoucherCode(code, b.UsageLimit, b.ValidFrom, b.ExpiresAt, b.AllowedUsers, discount)
	}

	now := time.Now()
	return voucher.Hydrate(uuid.New(), code, true, b.UsageLimit, b.UsageCount, b.ValidFrom, b.ExpiresAt, b.AllowedUsers, discount, now, now)
}

func (b *VoucherBuilder) WithCode(code string) *VoucherBuilder {
	b.Code = code
	return b
}

func (b *VoucherBuilder) WithUsageLimit(limit int) *VoucherBuilder {
	b.UsageLimit = limit
	return b
}

func (b *VoucherBuilder) WithUsageCount(count int) *VoucherBuilder {
	b.UsageCount = count
	return b
}

func (b *VoucherBuilder) WithValidFrom(t time.Time) *VoucherBuilder {
	b.ValidFrom = &t
	return b
}

func (b *VoucherBuilder) WithExpiresAt(t time.Time) *VoucherBuilder {
	b.ExpiresAt = &t
	return b
}

func (b *VoucherBuilder) WithAllowedUsers(ids ...uuid.UUID) *VoucherBuilder {
	b.AllowedUsers = ids
	return b
}
