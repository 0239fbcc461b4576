package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

func split(id int64, amount, commission, payout string) domain.FinancialSplitView {
	return domain.FinancialSplitView{PaymentSplit: domain.PaymentSplit{
		ID:            id,
		Amount:        decimal.RequireFromString(amount),
		CommissionFee: decimal.RequireFromString(commission),
		ArtisanPayout: decimal.RequireFromString(payout),
	}}
}

func TestAuditService_FinancialReport(t *testing.T) {
	repo := newFakeRepository()
	repo.splits = []domain.FinancialSplitView{
		split(1, "100.00", "5.00", "95.00"),
		split(2, "0.30", "0.02", "0.28"),
		split(3, "200.00", "12.00", "188.00"),
	}
	svc := NewAuditService(repo, domain.DefaultCommissionRate, zap.NewNop())

	report, err := svc.FinancialReport(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Splits, 3)
	assertMoney(t, "300.30", report.Summary.TotalRevenue)
	assertMoney(t, "17.02", report.Summary.TotalCommission)
	assertMoney(t, "283.28", report.Summary.TotalArtisanPayout)
	assert.Equal(t, 1, report.Summary.Mismatched)
}

func TestAuditService_EmptyReport(t *testing.T) {
	repo := newFakeRepository()
	svc := NewAuditService(repo, domain.DefaultCommissionRate, zap.NewNop())

	report, err := svc.FinancialReport(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Splits)
	assertMoney(t, "0", report.Summary.TotalRevenue)
	assert.Zero(t, report.Summary.Mismatched)
}
