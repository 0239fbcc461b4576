package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'rahima' for key 'uq_users_username'"})

	_, err := store.CreateUser(context.Background(), domain.User{Username: "rahima", Role: domain.RoleBuyer})
	assert.ErrorIs(t, err, port.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername(t *testing.T) {
	store, mock := newMockStore(t, postgresDialect{})
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("rahima").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash", "role", "full_name", "email", "phone", "created_at"}).
			AddRow(int64(3), "rahima", "$2a$10$hash", "artisan", "Rahima Begum", "rahima@example.com", "", created))
	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	user, err := store.GetUserByUsername(context.Background(), "rahima")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, domain.RoleArtisan, user.Role)
	assert.Equal(t, created, user.CreatedAt)

	_, err = store.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProduct(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})
	store.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(int64(3), "Jamdani Saree", "", decimalArg("4500.50"), 4, "textiles", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))

	p, err := store.CreateProduct(context.Background(), domain.Product{
		ArtisanID:     3,
		Name:          "Jamdani Saree",
		Price:         decimalFromString(t, "4500.50"),
		StockQuantity: 4,
		Category:      "textiles",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectQuery(`FROM products WHERE product_id = \?`).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := store.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_AvailableOnly(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectQuery(`FROM products WHERE stock_quantity > 0 ORDER BY`).WillReturnRows(productRow(2))

	products, err := store.ListProducts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 2, products[0].StockQuantity)
	assertDecimal(t, "100", products[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListArtisanProducts_WithSales(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	rows := sqlmock.NewRows(append(append([]string{}, productRowColumns...), "units_sold", "revenue")).
		AddRow(int64(1), int64(100), "Nakshi Kantha", "", "100.00", int64(3), "", "", time.Now(), []byte("4"), []byte("400.00")).
		AddRow(int64(2), int64(100), "Clay Pot", "", "20.00", int64(9), "", "", time.Now(), []byte("0"), []byte("0"))
	mock.ExpectQuery(`LEFT JOIN orders o`).WithArgs(int64(100)).WillReturnRows(rows)

	products, err := store.ListArtisanProducts(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 4, products[0].UnitsSold)
	assertDecimal(t, "400", products[0].Revenue)
	assert.Equal(t, 0, products[1].UnitsSold)
	assertDecimal(t, "0", products[1].Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectExec(`UPDATE orders SET status`).WithArgs("shipped", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE orders SET status`).WithArgs("shipped", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectExec(`UPDATE orders SET status`).WithArgs("shipped", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	ctx := context.Background()
	assert.NoError(t, store.UpdateOrderStatus(ctx, 10, domain.OrderStatusShipped))
	assert.NoError(t, store.UpdateOrderStatus(ctx, 10, domain.OrderStatusShipped))
	assert.ErrorIs(t, store.UpdateOrderStatus(ctx, 11, domain.OrderStatusShipped), port.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListArtisanOrders(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectQuery(`WHERE p.artisan_id = \?`).WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "buyer_id", "product_id", "quantity", "total_price", "shipping_address",
			"status", "created_at", "product_name", "image_url", "full_name", "phone",
		}).AddRow(int64(10), int64(7), int64(1), int64(2), "200.00", "Dhaka", "pending", time.Now(), "Nakshi Kantha", "", "Karim", "01711111111"))

	orders, err := store.ListArtisanOrders(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Karim", orders[0].CounterpartyName)
	assert.Equal(t, "01711111111", orders[0].BuyerPhone)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaymentSplits(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectQuery(`FROM transactions t`).WillReturnRows(sqlmock.NewRows([]string{
		"transaction_id", "order_id", "artisan_id", "buyer_id", "product_id",
		"amount", "commission_fee", "artisan_payout", "created_at",
		"product_name", "artisan_name", "buyer_name", "status",
	}).AddRow(int64(21), int64(11), int64(100), int64(7), int64(1), "100.00", "5.00", "95.00", time.Now(),
		"Nakshi Kantha", "Rahima Begum", "Karim", "delivered"))

	splits, err := store.ListPaymentSplits(context.Background())
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.True(t, splits[0].Consistent(domain.DefaultCommissionRate))
	assert.Equal(t, "Rahima Begum", splits[0].ArtisanName)
	assert.Equal(t, domain.OrderStatusDelivered, splits[0].OrderStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAudit_NullDetails(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect{})

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(int64(1), "status_update", "order", int64(10), nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.InsertAudit(context.Background(), domain.AuditEntry{
		ActorID: 1, Action: "status_update", EntityType: "order", EntityID: 10,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
