package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

var errInjected = errors.New("injected failure")

type fakeRow struct {
	lock    sync.Mutex
	product domain.Product
}

// fakeStore models a row-locking database: LockProduct uses TryLock so a
// held row fails immediately, and writes only become visible on Commit.
type fakeStore struct {
	mu       sync.Mutex
	rows     map[int64]*fakeRow
	orders   []domain.Order
	splits   []domain.PaymentSplit
	audits   []domain.AuditEntry
	nextID   int64
	beginErr error

	// onStep runs before each write; a non-nil error fails that write.
	onStep func(ctx context.Context, step string) error

	open atomic.Int32
}

func newFakeStore(products ...domain.Product) *fakeStore {
	s := &fakeStore{rows: make(map[int64]*fakeRow)}
	for _, p := range products {
		s.rows[p.ID] = &fakeRow{product: p}
	}
	return s
}

func (s *fakeStore) BeginPurchase(ctx context.Context) (port.PurchaseTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.open.Add(1)
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) stock(productID int64) int {
	row := s.rows[productID]
	row.lock.Lock()
	defer row.lock.Unlock()
	return row.product.StockQuantity
}

func (s *fakeStore) counts() (orders, splits, audits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.splits), len(s.audits)
}

func (s *fakeStore) id() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

type fakeTx struct {
	store  *fakeStore
	locked []*fakeRow
	stock  map[int64]int
	orders []domain.Order
	splits []domain.PaymentSplit
	audits []domain.AuditEntry
	done   bool
}

func (t *fakeTx) step(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.store.onStep != nil {
		return t.store.onStep(ctx, name)
	}
	return nil
}

func (t *fakeTx) LockProduct(ctx context.Context, productID int64) (domain.Product, error) {
	if err := t.step(ctx, "lock"); err != nil {
		return domain.Product{}, err
	}
	row, ok := t.store.rows[productID]
	if !ok {
		return domain.Product{}, port.ErrNotFound
	}
	if !row.lock.TryLock() {
		return domain.Product{}, port.ErrLockNotAvailable
	}
	t.locked = append(t.locked, row)
	return row.product, nil
}

func (t *fakeTx) UpdateStock(ctx context.Context, productID int64, newStock int) error {
	if err := t.step(ctx, "stock"); err != nil {
		return err
	}
	if t.stock == nil {
		t.stock = make(map[int64]int)
	}
	t.stock[productID] = newStock
	return nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	if err := t.step(ctx, "order"); err != nil {
		return 0, err
	}
	order.ID = t.store.id()
	t.orders = append(t.orders, order)
	return order.ID, nil
}

func (t *fakeTx) InsertPaymentSplit(ctx context.Context, split domain.PaymentSplit) (int64, error) {
	if err := t.step(ctx, "split"); err != nil {
		return 0, err
	}
	split.ID = t.store.id()
	t.splits = append(t.splits, split)
	return split.ID, nil
}

func (t *fakeTx) InsertAudit(ctx context.Context, entry domain.AuditEntry) error {
	if err := t.step(ctx, "audit"); err != nil {
		return err
	}
	t.audits = append(t.audits, entry)
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	if t.store.onStep != nil {
		if err := t.store.onStep(context.Background(), "commit"); err != nil {
			t.release()
			return err
		}
	}
	t.store.mu.Lock()
	for _, row := range t.locked {
		if stock, ok := t.stock[row.product.ID]; ok {
			row.product.StockQuantity = stock
		}
	}
	t.store.orders = append(t.store.orders, t.orders...)
	t.store.splits = append(t.store.splits, t.splits...)
	t.store.audits = append(t.store.audits, t.audits...)
	t.store.mu.Unlock()
	t.release()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *fakeTx) release() {
	for _, row := range t.locked {
		row.lock.Unlock()
	}
	t.locked = nil
	t.done = true
	t.store.open.Add(-1)
}
