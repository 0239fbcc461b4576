package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

func (h *HTTPHandler) FinancialAudit(c *gin.Context) {
	report, err := h.deps.Audit.FinancialReport(c.Request.Context())
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch audit data")
		return
	}

	splits := make([]FinancialSplitResponse, len(report.Splits))
	for i, s := range report.Splits {
		splits[i] = FinancialSplitResponse{
			TransactionID: s.ID,
			OrderID:       s.OrderID,
			ArtisanID:     s.ArtisanID,
			BuyerID:       s.BuyerID,
			ProductID:     s.ProductID,
			Amount:        domain.Money(s.Amount),
			CommissionFee: domain.Money(s.CommissionFee),
			ArtisanPayout: domain.Money(s.ArtisanPayout),
			CreatedAt:     s.CreatedAt,
			ProductName:   s.ProductName,
			ArtisanName:   s.ArtisanName,
			BuyerName:     s.BuyerName,
			OrderStatus:   s.OrderStatus,
		}
	}

	c.JSON(http.StatusOK, FinancialAuditResponse{
		Transactions: splits,
		Count:        len(splits),
		Summary: FinancialSummaryResponse{
			TotalRevenue:       domain.Money(report.Summary.TotalRevenue),
			TotalCommission:    domain.Money(report.Summary.TotalCommission),
			TotalArtisanPayout: domain.Money(report.Summary.TotalArtisanPayout),
			MismatchedSplits:   report.Summary.Mismatched,
		},
	})
}
