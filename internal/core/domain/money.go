package domain

import (
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits kept for every stored amount.
const CurrencyPlaces = 2

// DefaultCommissionRate is the platform share of every sale.
var DefaultCommissionRate = decimal.RequireFromString("0.05")

// SplitPayment divides a gross amount into the platform commission and the
// artisan payout. The commission is rounded half away from zero to
// CurrencyPlaces; the payout is whatever remains, so the two always sum to
// the gross amount exactly.
//
// The purchase transaction and the financial audit report both go through
// this function so stored and recomputed splits agree to the cent.
func SplitPayment(gross, rate decimal.Decimal) (commission, payout decimal.Decimal) {
	commission = gross.Mul(rate).Round(CurrencyPlaces)
	payout = gross.Sub(commission).Round(CurrencyPlaces)
	return commission, payout
}

// Money renders a decimal as a JSON number with exactly two fractional digits.
type Money decimal.Decimal

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(CurrencyPlaces)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
