package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
)

// Settlement is the derived payment state of a trip.
type Settlement struct {
	BalancePayment decimal.Decimal
	PaymentStatus  domain.PaymentStatus
}

// ComputeSettlement derives the balance and payment status from a trip
// value and the advance received. It does not validate its inputs.
func ComputeSettlement(tripValue, advance decimal.Decimal) Settlement {
	status := domain.PaymentStatusPending
	if advance.IsPositive() {
		status = domain.PaymentStatusAdvancePaid
	}
	return Settlement{
		BalancePayment: tripValue.Sub(advance),
		PaymentStatus:  status,
	}
}

// maxAmountScale is the number of decimal places money is stored and shown with.
const maxAmountScale = 2

// ParseAmount parses a display amount such as "₹85,000" or "85000.50".
// Currency symbols, grouping commas and whitespace are ignored; the
// fractional part is kept, up to two decimal places. An empty string
// parses as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r):
		default:
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(maxAmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, maxAmountScale)
	}
	return d, nil
}
