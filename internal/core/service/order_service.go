package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

// OrderService covers the order lifecycle after purchase. It never touches
// product stock.
type OrderService struct {
	orders port.OrderRepository
	audit  port.AuditRepository
	logger *zap.Logger
}

func NewOrderService(orders port.OrderRepository, audit port.AuditRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, audit: audit, logger: logger}
}

func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error) {
	orders, err := s.orders.ListBuyerOrders(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list buyer orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error) {
	orders, err := s.orders.ListArtisanOrders(ctx, artisanID)
	if err != nil {
		return nil, fmt.Errorf("list artisan orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID int64, status domain.OrderStatus, clientAddress string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status must be one of pending, processing, shipped, delivered, cancelled", ErrInvalidInput)
	}

	err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if errors.Is(err, port.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	entry, err := domain.NewAuditEntry(actorID, domain.AuditActionStatusUpdate, domain.AuditEntityOrder, orderID,
		map[string]string{"new_status": string(status)}, clientAddress)
	if err == nil {
		err = s.audit.InsertAudit(ctx, entry)
	}
	if err != nil {
		s.logger.Error("audit status update", zap.Int64("order_id", orderID), zap.Error(err))
	}

	s.logger.Info("order status updated", zap.Int64("order_id", orderID), zap.String("status", string(status)), zap.Int64("actor_id", actorID))
	return nil
}
