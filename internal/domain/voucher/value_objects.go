package voucher

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode            = errors.New("invalid voucher code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrNonPositiveUsageLimit  = errors.New("usage limit must be positive")
	ErrNegativeUsageCount     = errors.New("usage count cannot be negative")
	ErrUsageCountExceedsLimit = errors.New("usage count exceeds usage limit")
	ErrExpiresBeforeValidFrom = errors.New("expires_at must be strictly after valid_from")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9-]{6,50}$`)

type Code string

func NewCode(s string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code(""), ErrInvalidCode
	}
	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}

// Discount is either a fixed amount or a percentage, never both, mirroring
// the XOR shape of a storefront coupon but carried in decimal.Decimal
// rather than float64/cents so a claim's discount never drifts when it
// resurfaces in a receipt or audit record.
type Discount struct {
	amountOff *decimal.Decimal
	percentOff *decimal.Decimal
}

func NewFixedDiscount(amountOff decimal.Decimal) (Discount, error) {
	if amountOff.IsNegative() {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOff: &amountOff}, nil
}

func NewPercentageDiscount(percentOff decimal.Decimal) (Discount, error) {
	if percentOff.IsNegative() || percentOff.GreaterThan(decimal.NewFromInt(100)) {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{percentOff: &percentOff}, nil
}

func NewDiscount(amountOff, percentOff *decimal.Decimal) (Discount, error) {
	if amountOff != nil && percentOff != nil {
		return Discount{}, errors.New("discount can only be either fixed amount or percentage, not both")
	}
	if amountOff == nil && percentOff == nil {
		return Discount{}, errors.New("discount must have either fixed amount or percentage")
	}
	if amountOff != nil {
		return NewFixedDiscount(*amountOff)
	}
	return NewPercentageDiscount(*percentOff)
}

func (d Discount) IsPercentage() bool { return d.percentOff != nil }
func (d Discount) IsFixed() bool      { return d.amountOff != nil }

func (d Discount) AmountOff() decimal.Decimal {
	if d.amountOff != nil {
		return *d.amountOff
	}
	return decimal.Zero
}

func (d Discount) PercentOff() decimal.Decimal {
	if d.percentOff != nil {
		return *d.percentOff
	}
	return decimal.Zero
}

// Apply returns the discounted price, floored at zero.
func (d Discount) Apply(basePrice decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	if d.IsPercentage() {
		off = basePrice.Mul(d.PercentOff()).Div(decimal.NewFromInt(100))
	} else {
		off = d.AmountOff()
		if off.GreaterThan(basePrice) {
			off = basePrice
		}
	}
	result := basePrice.Sub(off)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}
