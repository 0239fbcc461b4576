package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSplit records how the money of one order is divided between the
// platform and the artisan.
type PaymentSplit struct {
	ID            int64
	OrderID       int64
	ArtisanID     int64
	BuyerID       int64
	ProductID     int64
	Amount        decimal.Decimal
	CommissionFee decimal.Decimal
	ArtisanPayout decimal.Decimal
	CreatedAt     time.Time
}

// Consistent reports whether the stored commission and payout match what
// SplitPayment yields for the stored amount at the given rate.
func (p PaymentSplit) Consistent(rate decimal.Decimal) bool {
	commission, payout := SplitPayment(p.Amount, rate)
	return commission.Equal(p.CommissionFee) && payout.Equal(p.ArtisanPayout)
}

// FinancialSummary totals a set of payment splits.
type FinancialSummary struct {
	TotalRevenue       decimal.Decimal
	TotalCommission    decimal.Decimal
	TotalArtisanPayout decimal.Decimal
	Mismatched         int
}

// FinancialSplitView is a payment split with the names shown in the admin audit.
type FinancialSplitView struct {
	PaymentSplit
	ProductName string
	ArtisanName string
	BuyerName   string
	OrderStatus OrderStatus
}
