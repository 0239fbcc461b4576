package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

func (s *SQLStore) BeginPurchase(ctx context.Context) (port.PurchaseTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &purchaseTx{tx: tx, store: s}, nil
}

type purchaseTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (t *purchaseTx) rebind(query string) string {
	return t.store.dialect.Rebind(query)
}

// LockProduct reads the product row under an exclusive lock and fails
// immediately when another transaction holds it.
func (t *purchaseTx) LockProduct(ctx context.Context, productID int64) (domain.Product, error) {
	row := t.tx.QueryRowContext(ctx, t.rebind(`
		SELECT `+productColumns+`
		FROM products WHERE product_id = ?
		FOR UPDATE NOWAIT`), productID)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, port.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, t.store.dialect.TranslateError(err)
	}
	return product, nil
}

func (t *purchaseTx) UpdateStock(ctx context.Context, productID int64, newStock int) error {
	_, err := t.tx.ExecContext(ctx, t.rebind(`
		UPDATE products SET stock_quantity = ? WHERE product_id = ?`),
		newStock, productID,
	)
	if err != nil {
		return t.store.dialect.TranslateError(err)
	}
	return nil
}

func (t *purchaseTx) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	return t.store.dialect.InsertID(ctx, t.tx, t.rebind(`
		INSERT INTO orders (buyer_id, product_id, quantity, total_price, shipping_address, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`), "order_id",
		order.BuyerID, order.ProductID, order.Quantity, order.TotalPrice,
		order.ShippingAddress, string(order.Status), t.store.stamp(order.CreatedAt),
	)
}

func (t *purchaseTx) InsertPaymentSplit(ctx context.Context, split domain.PaymentSplit) (int64, error) {
	return t.store.dialect.InsertID(ctx, t.tx, t.rebind(`
		INSERT INTO transactions (order_id, artisan_id, buyer_id, product_id, amount, commission_fee, artisan_payout, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`), "transaction_id",
		split.OrderID, split.ArtisanID, split.BuyerID, split.ProductID,
		split.Amount, split.CommissionFee, split.ArtisanPayout, t.store.stamp(split.CreatedAt),
	)
}

func (t *purchaseTx) InsertAudit(ctx context.Context, entry domain.AuditEntry) error {
	return t.store.insertAudit(ctx, t.tx, entry)
}

func (t *purchaseTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return t.store.dialect.TranslateError(err)
	}
	return nil
}

// Rollback is a no-op once the transaction has been committed.
func (t *purchaseTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
