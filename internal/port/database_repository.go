package port

import (
	"context"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

type UserRepository interface {
	// CreateUser returns ErrConflict when the username is taken
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)

	// GetUserByUsername returns ErrNotFound for unknown usernames
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	GetUserByID(ctx context.Context, userID int64) (domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
}

type CatalogRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)

	// GetProduct is a plain read; it never locks the row
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)

	ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error)

	ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error)
}

type OrderRepository interface {
	ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error)

	ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error)

	// UpdateOrderStatus returns ErrNotFound when no order has the id
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
}

type AuditRepository interface {
	InsertAudit(ctx context.Context, entry domain.AuditEntry) error

	ListPaymentSplits(ctx context.Context) ([]domain.FinancialSplitView, error)
}
