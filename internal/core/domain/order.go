package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              int64
	BuyerID         int64
	ProductID       int64
	Quantity        int
	TotalPrice      decimal.Decimal
	ShippingAddress string
	Status          OrderStatus
	CreatedAt       time.Time
}

// OrderView is an order joined with the names a buyer or artisan needs to
// recognise it.
type OrderView struct {
	Order
	ProductName      string
	ImageURL         string
	CounterpartyName string
	BuyerPhone       string
}
