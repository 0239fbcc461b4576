package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPayment(t *testing.T) {
	tests := []struct {
		gross, rate, commission, payout string
	}{
		{"100", "0.05", "5.00", "95.00"},
		{"59.97", "0.05", "3.00", "56.97"},
		// half cents round away from zero, not to even
		{"0.50", "0.05", "0.03", "0.47"},
		{"0.10", "0.05", "0.01", "0.09"},
		{"0.01", "0.05", "0.00", "0.01"},
		{"1234.56", "0", "0.00", "1234.56"},
		{"1234.56", "1", "1234.56", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.gross+"@"+tt.rate, func(t *testing.T) {
			gross := decimal.RequireFromString(tt.gross)
			commission, payout := SplitPayment(gross, decimal.RequireFromString(tt.rate))

			assert.True(t, decimal.RequireFromString(tt.commission).Equal(commission), "commission %s", commission)
			assert.True(t, decimal.RequireFromString(tt.payout).Equal(payout), "payout %s", payout)
			assert.True(t, commission.Add(payout).Equal(gross))
		})
	}
}

func TestPaymentSplitConsistent(t *testing.T) {
	rate := decimal.RequireFromString("0.05")
	split := PaymentSplit{
		Amount:        decimal.RequireFromString("100"),
		CommissionFee: decimal.RequireFromString("5"),
		ArtisanPayout: decimal.RequireFromString("95"),
	}
	assert.True(t, split.Consistent(rate))

	split.CommissionFee = decimal.RequireFromString("4.99")
	assert.False(t, split.Consistent(rate))
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Money(decimal.NewFromInt(100))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":100.00}`, string(data))
	assert.Contains(t, string(data), "100.00")

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"19.5"`), &m))
	assert.True(t, decimal.RequireFromString("19.5").Equal(m.Decimal()))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "SOLD_OUT", OutcomeSoldOut.Code())
	assert.Equal(t, "INSUFFICIENT_STOCK", OutcomeInsufficientStock.Code())
	assert.Equal(t, "INTERNAL", Outcome(99).Code())
	assert.Equal(t, "unknown", Outcome(99).String())

	assert.True(t, OutcomeLockContention.Retryable())
	for _, o := range []Outcome{OutcomeSuccess, OutcomeNotFound, OutcomeSoldOut, OutcomeInsufficientStock, OutcomeInternalFailure} {
		assert.False(t, o.Retryable(), o.String())
	}
}
