package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

const productColumns = `product_id, artisan_id, product_name, description, price, stock_quantity, category, image_url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (domain.Product, error) {
	var p domain.Product
	dest := append([]any{
		&p.ID, &p.ArtisanID, &p.Name, &p.Description, &p.Price,
		&p.StockQuantity, &p.Category, &p.ImageURL, &p.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *SQLStore) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	product.CreatedAt = s.stamp(product.CreatedAt)
	id, err := s.dialect.InsertID(ctx, s.db, s.dialect.Rebind(`
		INSERT INTO products (artisan_id, product_name, description, price, stock_quantity, category, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`), "product_id",
		product.ArtisanID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.Category, product.ImageURL, product.CreatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	product.ID = id
	return product, nil
}

func (s *SQLStore) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT `+productColumns+` FROM products WHERE product_id = ?`), productID)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, port.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (s *SQLStore) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if availableOnly {
		query += ` WHERE stock_quantity > 0`
	}
	query += ` ORDER BY created_at DESC, product_id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListArtisanProducts returns the artisan's products with units sold and
// revenue over every order that was not cancelled.
func (s *SQLStore) ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT p.product_id, p.artisan_id, p.product_name, p.description, p.price,
			p.stock_quantity, p.category, p.image_url, p.created_at,
			COALESCE(SUM(o.quantity), 0), COALESCE(SUM(o.total_price), 0)
		FROM products p
		LEFT JOIN orders o ON o.product_id = p.product_id AND o.status <> 'cancelled'
		WHERE p.artisan_id = ?
		GROUP BY p.product_id
		ORDER BY p.created_at DESC, p.product_id DESC`), artisanID)
	if err != nil {
		return nil, fmt.Errorf("query artisan products: %w", err)
	}
	defer rows.Close()

	products := []domain.ProductSales{}
	for rows.Next() {
		var ps domain.ProductSales
		ps.Product, err = scanProduct(rows, &ps.UnitsSold, &ps.Revenue)
		if err != nil {
			return nil, fmt.Errorf("scan artisan product: %w", err)
		}
		products = append(products, ps)
	}
	return products, rows.Err()
}
