package port

import (
	"context"
	"errors"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrLockNotAvailable = errors.New("row lock not available")
	ErrConflict         = errors.New("conflict")
)

// PurchaseStore opens the transactional handle a purchase runs on.
type PurchaseStore interface {
	// BeginPurchase starts a transaction. The returned handle owns one pooled
	// connection until Commit or Rollback is called.
	BeginPurchase(ctx context.Context) (PurchaseTx, error)
}

// PurchaseTx is a single open transaction. Rollback after Commit is a no-op,
// so callers can always defer Rollback.
type PurchaseTx interface {
	// LockProduct takes an exclusive row lock without waiting. It returns
	// ErrLockNotAvailable when another transaction holds the row and
	// ErrNotFound when no product has the id.
	LockProduct(ctx context.Context, productID int64) (domain.Product, error)

	UpdateStock(ctx context.Context, productID int64, newStock int) error

	// InsertOrder stores the order and returns its generated id.
	InsertOrder(ctx context.Context, order domain.Order) (int64, error)

	InsertPaymentSplit(ctx context.Context, split domain.PaymentSplit) (int64, error)

	InsertAudit(ctx context.Context, entry domain.AuditEntry) error

	Commit() error
	Rollback() error
}
