package storage

import (
	"context"
	"fmt"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

func (s *SQLStore) InsertAudit(ctx context.Context, entry domain.AuditEntry) error {
	return s.insertAudit(ctx, s.db, entry)
}

func (s *SQLStore) insertAudit(ctx context.Context, q querier, entry domain.AuditEntry) error {
	_, err := q.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO audit_logs (user_id, action_type, entity_type, entity_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, `+s.dialect.JSONParam()+`, ?, ?)`),
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		jsonArg(entry.Details), entry.ClientAddress, s.stamp(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", s.dialect.TranslateError(err))
	}
	return nil
}

// ListPaymentSplits returns every payment split, newest first, with the
// names the financial audit shows.
func (s *SQLStore) ListPaymentSplits(ctx context.Context) ([]domain.FinancialSplitView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.transaction_id, t.order_id, t.artisan_id, t.buyer_id, t.product_id,
			t.amount, t.commission_fee, t.artisan_payout, t.created_at,
			p.product_name, a.full_name, b.full_name, o.status
		FROM transactions t
		JOIN orders o ON t.order_id = o.order_id
		JOIN products p ON t.product_id = p.product_id
		JOIN users a ON t.artisan_id = a.user_id
		JOIN users b ON t.buyer_id = b.user_id
		ORDER BY t.created_at DESC, t.transaction_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query payment splits: %w", err)
	}
	defer rows.Close()

	splits := []domain.FinancialSplitView{}
	for rows.Next() {
		var v domain.FinancialSplitView
		if err := rows.Scan(
			&v.ID, &v.OrderID, &v.ArtisanID, &v.BuyerID, &v.ProductID,
			&v.Amount, &v.CommissionFee, &v.ArtisanPayout, &v.CreatedAt,
			&v.ProductName, &v.ArtisanName, &v.BuyerName, &v.OrderStatus,
		); err != nil {
			return nil, fmt.Errorf("scan payment split: %w", err)
		}
		splits = append(splits, v)
	}
	return splits, rows.Err()
}
