package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// PurchaseConfig holds the knobs of the purchase transaction.
type PurchaseConfig struct {
	// CommissionRate is the platform share of the gross amount.
	CommissionRate decimal.Decimal
	// Timeout bounds every statement issued before commit. Zero means the
	// caller's context is the only bound.
	Timeout time.Duration
	// Now stamps the order row.
	Now func() time.Time
}

func DefaultPurchaseConfig() PurchaseConfig {
	return PurchaseConfig{
		CommissionRate: domain.DefaultCommissionRate,
		Timeout:        5 * time.Second,
		Now:            time.Now,
	}
}

// PurchaseService runs the locked purchase transaction: lock the product row
// without waiting, check stock, then decrement stock and write the order,
// payment split and audit entry as one unit.
type PurchaseService struct {
	store    port.PurchaseStore
	cfg      PurchaseConfig
	logger   *zap.Logger
	tracer   trace.Tracer
	outcomes metric.Int64Counter
	duration metric.Float64Histogram
}

func NewPurchaseService(store port.PurchaseStore, cfg PurchaseConfig, logger *zap.Logger, tracer trace.Tracer, meter metric.Meter) (*PurchaseService, error) {
	if cfg.CommissionRate.IsNegative() || cfg.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission rate %s out of range [0, 1]", cfg.CommissionRate)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	outcomes, err := meter.Int64Counter("marketplace.purchase.outcomes",
		metric.WithDescription("Purchase attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create outcome counter: %w", err)
	}
	duration, err := meter.Float64Histogram("marketplace.purchase.duration",
		metric.WithDescription("Purchase transaction duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &PurchaseService{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		tracer:   tracer,
		outcomes: outcomes,
		duration: duration,
	}, nil
}

// Purchase never returns an error: every way the attempt can end is one of
// the domain outcomes.
func (s *PurchaseService) Purchase(ctx context.Context, intent domain.PurchaseIntent) domain.PurchaseResult {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "purchase.lock", trace.WithAttributes(
		attribute.Int64("buyer_id", intent.BuyerID),
		attribute.Int64("product_id", intent.ProductID),
		attribute.Int("quantity", intent.Quantity),
	))
	defer span.End()

	result := s.purchase(ctx, intent)

	attrs := metric.WithAttributes(attribute.String("outcome", result.Outcome.String()))
	s.outcomes.Add(ctx, 1, attrs)
	s.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

	span.SetAttributes(attribute.String("outcome", result.Outcome.String()))
	if result.Outcome == domain.OutcomeInternalFailure {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "purchase failed")
	}

	s.log(intent, result)
	return result
}

func (s *PurchaseService) purchase(ctx context.Context, intent domain.PurchaseIntent) domain.PurchaseResult {
	if intent.Quantity <= 0 {
		return domain.PurchaseFailed(ErrInvalidQuantity)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	// The transaction outlives caller cancellation so a commit that has
	// started is never torn down; statements below still observe ctx.
	tx, err := s.store.BeginPurchase(context.WithoutCancel(ctx))
	if err != nil {
		return domain.PurchaseFailed(fmt.Errorf("begin purchase: %w", err))
	}
	defer tx.Rollback()

	product, err := tx.LockProduct(ctx, intent.ProductID)
	switch {
	case errors.Is(err, port.ErrLockNotAvailable):
		return domain.PurchaseRejected(domain.OutcomeLockContention)
	case errors.Is(err, port.ErrNotFound):
		return domain.PurchaseRejected(domain.OutcomeNotFound)
	case err != nil:
		return domain.PurchaseFailed(fmt.Errorf("lock product %d: %w", intent.ProductID, err))
	}

	if product.StockQuantity <= 0 {
		return domain.PurchaseRejected(domain.OutcomeSoldOut)
	}
	if product.StockQuantity < intent.Quantity {
		return domain.PurchaseShort(product.StockQuantity)
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(intent.Quantity)))
	newStock := product.StockQuantity - intent.Quantity

	if err := tx.UpdateStock(ctx, product.ID, newStock); err != nil {
		return domain.PurchaseFailed(fmt.Errorf("update stock: %w", err))
	}

	createdAt := s.cfg.Now().UTC().Truncate(time.Microsecond)
	orderID, err := tx.InsertOrder(ctx, domain.Order{
		BuyerID:         intent.BuyerID,
		ProductID:       product.ID,
		Quantity:        intent.Quantity,
		TotalPrice:      total,
		ShippingAddress: intent.ShippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       createdAt,
	})
	if err != nil {
		return domain.PurchaseFailed(fmt.Errorf("insert order: %w", err))
	}

	commission, payout := domain.SplitPayment(total, s.cfg.CommissionRate)
	splitID, err := tx.InsertPaymentSplit(ctx, domain.PaymentSplit{
		OrderID:       orderID,
		ArtisanID:     product.ArtisanID,
		BuyerID:       intent.BuyerID,
		ProductID:     product.ID,
		Amount:        total,
		CommissionFee: commission,
		ArtisanPayout: payout,
		CreatedAt:     createdAt,
	})
	if err != nil {
		return domain.PurchaseFailed(fmt.Errorf("insert payment split: %w", err))
	}

	entry, err := domain.NewAuditEntry(intent.BuyerID, domain.AuditActionPurchase, domain.AuditEntityOrder, orderID,
		purchaseAuditDetails{
			ProductName: product.Name,
			Quantity:    intent.Quantity,
			TotalPrice:  domain.Money(total),
			OldStock:    product.StockQuantity,
			NewStock:    newStock,
		}, intent.ClientAddress)
	if err != nil {
		return domain.PurchaseFailed(fmt.Errorf("encode audit details: %w", err))
	}
	entry.CreatedAt = createdAt
	if err := tx.InsertAudit(ctx, entry); err != nil {
		return domain.PurchaseFailed(fmt.Errorf("insert audit entry: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return domain.PurchaseFailed(fmt.Errorf("interrupted before commit: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return domain.PurchaseFailed(fmt.Errorf("commit: %w", err))
	}

	return domain.PurchaseSucceeded(domain.PurchaseReceipt{
		OrderID:        orderID,
		PaymentSplitID: splitID,
		ProductName:    product.Name,
		Quantity:       intent.Quantity,
		TotalPrice:     total,
		CommissionFee:  commission,
		ArtisanPayout:  payout,
		RemainingStock: newStock,
		CreatedAt:      createdAt,
	})
}

type purchaseAuditDetails struct {
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	TotalPrice  domain.Money `json:"total_price"`
	OldStock    int          `json:"old_stock"`
	NewStock    int          `json:"new_stock"`
}

func (s *PurchaseService) log(intent domain.PurchaseIntent, result domain.PurchaseResult) {
	fields := []zap.Field{
		zap.Int64("buyer_id", intent.BuyerID),
		zap.Int64("product_id", intent.ProductID),
		zap.Int("quantity", intent.Quantity),
	}

	switch result.Outcome {
	case domain.OutcomeSuccess:
		r := result.Receipt
		s.logger.Info("purchase succeeded", append(fields,
			zap.Int64("order_id", r.OrderID),
			zap.String("product_name", r.ProductName),
			zap.Int("stock_old", r.RemainingStock+r.Quantity),
			zap.Int("stock_new", r.RemainingStock),
		)...)
	case domain.OutcomeLockContention:
		s.logger.Warn("product row locked by another purchase", fields...)
	case domain.OutcomeSoldOut:
		s.logger.Warn("product sold out", fields...)
	case domain.OutcomeInsufficientStock:
		s.logger.Warn("insufficient stock", append(fields, zap.Int("available", result.Available))...)
	case domain.OutcomeNotFound:
		s.logger.Info("product not found", fields...)
	default:
		s.logger.Error("purchase failed", append(fields, zap.Error(result.Err))...)
	}
}
