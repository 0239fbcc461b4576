package service

import (
	"context"
	"sync"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

// fakeRepository backs every read-side repository port with plain maps.
type fakeRepository struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	splits   []domain.FinancialSplitView
	audits   []domain.AuditEntry
	nextID   int64

	auditErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
}

func (r *fakeRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return domain.User{}, port.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, port.ErrNotFound
}

func (r *fakeRepository) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.User{}, port.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *fakeRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product, nil
}

func (r *fakeRepository) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.Product{}, port.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepository) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var products []domain.Product
	for _, p := range r.products {
		if availableOnly && p.StockQuantity <= 0 {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *fakeRepository) ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var products []domain.ProductSales
	for _, p := range r.products {
		if p.ArtisanID == artisanID {
			products = append(products, domain.ProductSales{Product: p})
		}
	}
	return products, nil
}

func (r *fakeRepository) ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.OrderView
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			orders = append(orders, domain.OrderView{Order: o})
		}
	}
	return orders, nil
}

func (r *fakeRepository) ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.OrderView
	for _, o := range r.orders {
		if r.products[o.ProductID].ArtisanID == artisanID {
			orders = append(orders, domain.OrderView{Order: o})
		}
	}
	return orders, nil
}

func (r *fakeRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return port.ErrNotFound
	}
	o.Status = status
	r.orders[orderID] = o
	return nil
}

func (r *fakeRepository) InsertAudit(ctx context.Context, entry domain.AuditEntry) error {
	if r.auditErr != nil {
		return r.auditErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, entry)
	return nil
}

func (r *fakeRepository) ListPaymentSplits(ctx context.Context) ([]domain.FinancialSplitView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FinancialSplitView(nil), r.splits...), nil
}
