package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64
	ArtisanID     int64
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
	ImageURL      string
	CreatedAt     time.Time
}

// ProductSales is a product together with what it has sold so far.
type ProductSales struct {
	Product
	UnitsSold int
	Revenue   decimal.Decimal
}
