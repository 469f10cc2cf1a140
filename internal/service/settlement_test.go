package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
)

func TestComputeSettlement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value, advance string
		balance        string
		status         domain.PaymentStatus
	}{
		{"85000", "25000", "60000", domain.PaymentStatusAdvancePaid},
		{"85000", "0", "85000", domain.PaymentStatusPending},
		{"85000", "85000", "0", domain.PaymentStatusAdvancePaid},
		{"1000.10", "0.05", "1000.05", domain.PaymentStatusAdvancePaid},
		{"0.3", "0.1", "0.2", domain.PaymentStatusAdvancePaid},
	}

	for _, tt := range tests {
		t.Run(tt.value+"-"+tt.advance, func(t *testing.T) {
			t.Parallel()

			got := ComputeSettlement(decimal.RequireFromString(tt.value), decimal.RequireFromString(tt.advance))

			if !got.BalancePayment.Equal(decimal.RequireFromString(tt.balance)) {
				t.Errorf("expected balance %s, got %s", tt.balance, got.BalancePayment)
			}
			if got.PaymentStatus != tt.status {
				t.Errorf("expected %s, got %s", tt.status, got.PaymentStatus)
			}
		})
	}
}

func TestComputeSettlement_BalanceIdentity(t *testing.T) {
	t.Parallel()

	for value := int64(0); value <= 200; value += 7 {
		for advance := int64(0); advance <= value; advance += 3 {
			v := decimal.New(value, -1)
			a := decimal.New(advance, -1)
			got := ComputeSettlement(v, a)

			if !got.BalancePayment.Add(a).Equal(v) {
				t.Fatalf("balance %s + advance %s != value %s", got.BalancePayment, a, v)
			}
			if (got.PaymentStatus == domain.PaymentStatusAdvancePaid) != a.IsPositive() {
				t.Fatalf("advance %s gave status %s", a, got.PaymentStatus)
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"₹85,000", "85000", false},
		{"85000.50", "85000.5", false},
		{" $1,234.56 ", "1234.56", false},
		{"", "0", false},
		{"-100", "-100", false},
		{"12abc", "", true},
		{"1.2.3", "", true},
		{"1.000", "1", false},
		{"1.005", "", true},
		{"0.004", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
