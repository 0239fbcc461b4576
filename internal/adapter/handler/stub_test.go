package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/artisan-market/internal/auth"
	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPurchaser struct {
	mu      sync.Mutex
	result  domain.PurchaseResult
	intents []domain.PurchaseIntent
}

func (s *stubPurchaser) Purchase(ctx context.Context, intent domain.PurchaseIntent) domain.PurchaseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
	return s.result
}

func (s *stubPurchaser) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}

type stubAccounts struct {
	users map[string]domain.User
	err   error
}

func (s *stubAccounts) Register(ctx context.Context, in service.RegisterInput) (domain.User, string, error) {
	if s.err != nil {
		return domain.User{}, "", s.err
	}
	return domain.User{ID: 1, Username: in.Username, Role: in.Role, FullName: in.FullName}, "token", nil
}

func (s *stubAccounts) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	u, ok := s.users[username]
	if !ok || password != "secret123" {
		return domain.User{}, "", service.ErrInvalidCredentials
	}
	return u, "token", nil
}

func (s *stubAccounts) Me(ctx context.Context, userID int64) (domain.User, error) {
	for _, u := range s.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return domain.User{}, service.ErrUserNotFound
}

func (s *stubAccounts) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

type stubCatalog struct {
	products map[int64]domain.Product
	created  []service.NewProductInput
	err      error
}

func (s *stubCatalog) CreateProduct(ctx context.Context, artisanID int64, in service.NewProductInput, clientAddress string) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	s.created = append(s.created, in)
	return domain.Product{ID: 9, ArtisanID: artisanID, Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, service.ErrProductNotFound
	}
	return p, nil
}

func (s *stubCatalog) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	var products []domain.Product
	for _, p := range s.products {
		if availableOnly && p.StockQuantity == 0 {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *stubCatalog) ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error) {
	return nil, nil
}

type stubOrders struct {
	updates map[int64]domain.OrderStatus
}

func (s *stubOrders) ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error) {
	return []domain.OrderView{{Order: domain.Order{ID: 10, BuyerID: buyerID}, CounterpartyName: "Rahima Begum"}}, nil
}

func (s *stubOrders) ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error) {
	return nil, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, actorID, orderID int64, status domain.OrderStatus, clientAddress string) error {
	if !status.Valid() {
		return service.ErrInvalidInput
	}
	if orderID != 10 {
		return service.ErrOrderNotFound
	}
	s.updates[orderID] = status
	return nil
}

type stubAuditor struct {
	report service.FinancialReport
}

func (s *stubAuditor) FinancialReport(ctx context.Context) (service.FinancialReport, error) {
	return s.report, nil
}

type stubIdempotency struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]bool)}
}

func (s *stubIdempotency) ReserveIdempotencyKey(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdempotency) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

var testTokens = auth.NewTokenIssuer("handler-test-secret", time.Hour)

func tokenFor(t *testing.T, id int64, role domain.Role) string {
	t.Helper()
	token, err := testTokens.Issue(domain.User{ID: id, Username: string(role), Role: role})
	require.NoError(t, err)
	return token
}
