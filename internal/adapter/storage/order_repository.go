package storage

import (
	"context"
	"fmt"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

const orderViewColumns = `o.order_id, o.buyer_id, o.product_id, o.quantity, o.total_price,
	o.shipping_address, o.status, o.created_at, p.product_name, p.image_url, u.full_name`

// ListBuyerOrders joins each order with the artisan who sells the product.
func (s *SQLStore) ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error) {
	return s.listOrders(ctx, `
		SELECT `+orderViewColumns+`, ''
		FROM orders o
		JOIN products p ON o.product_id = p.product_id
		JOIN users u ON p.artisan_id = u.user_id
		WHERE o.buyer_id = ?
		ORDER BY o.created_at DESC, o.order_id DESC`, buyerID)
}

// ListArtisanOrders joins each order with the buyer who placed it.
func (s *SQLStore) ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error) {
	return s.listOrders(ctx, `
		SELECT `+orderViewColumns+`, u.phone
		FROM orders o
		JOIN products p ON o.product_id = p.product_id
		JOIN users u ON o.buyer_id = u.user_id
		WHERE p.artisan_id = ?
		ORDER BY o.created_at DESC, o.order_id DESC`, artisanID)
}

func (s *SQLStore) listOrders(ctx context.Context, query string, arg int64) ([]domain.OrderView, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), arg)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	views := []domain.OrderView{}
	for rows.Next() {
		var v domain.OrderView
		if err := rows.Scan(
			&v.ID, &v.BuyerID, &v.ProductID, &v.Quantity, &v.TotalPrice,
			&v.ShippingAddress, &v.Status, &v.CreatedAt,
			&v.ProductName, &v.ImageURL, &v.CounterpartyName, &v.BuyerPhone,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *SQLStore) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		UPDATE orders SET status = ? WHERE order_id = ?`), string(status), orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	// MySQL reports zero affected rows when the status is unchanged, so an
	// absent order is confirmed with a read.
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	var exists int
	err = s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT COUNT(*) FROM orders WHERE order_id = ?`), orderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query order: %w", err)
	}
	if exists == 0 {
		return port.ErrNotFound
	}
	return nil
}
