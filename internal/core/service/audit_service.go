package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

type FinancialReport struct {
	Splits  []domain.FinancialSplitView
	Summary domain.FinancialSummary
}

// AuditService builds the admin financial report. It rechecks every stored
// split with the same rate and rounding the purchase transaction used.
type AuditService struct {
	audit          port.AuditRepository
	commissionRate decimal.Decimal
	logger         *zap.Logger
}

func NewAuditService(audit port.AuditRepository, commissionRate decimal.Decimal, logger *zap.Logger) *AuditService {
	return &AuditService{audit: audit, commissionRate: commissionRate, logger: logger}
}

func (s *AuditService) FinancialReport(ctx context.Context) (FinancialReport, error) {
	splits, err := s.audit.ListPaymentSplits(ctx)
	if err != nil {
		return FinancialReport{}, fmt.Errorf("list payment splits: %w", err)
	}

	summary := domain.FinancialSummary{
		TotalRevenue:       decimal.Zero,
		TotalCommission:    decimal.Zero,
		TotalArtisanPayout: decimal.Zero,
	}
	for _, split := range splits {
		summary.TotalRevenue = summary.TotalRevenue.Add(split.Amount)
		summary.TotalCommission = summary.TotalCommission.Add(split.CommissionFee)
		summary.TotalArtisanPayout = summary.TotalArtisanPayout.Add(split.ArtisanPayout)
		if !split.Consistent(s.commissionRate) {
			summary.Mismatched++
			s.logger.Warn("payment split disagrees with commission rule",
				zap.Int64("transaction_id", split.ID),
				zap.String("amount", split.Amount.String()),
				zap.String("commission_fee", split.CommissionFee.String()))
		}
	}

	return FinancialReport{Splits: splits, Summary: summary}, nil
}
