package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
)

const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
	CodeInternal         = "INTERNAL"
)

type ErrorResponse struct {
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	Available *int   `json:"available,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Detail: detail})
}

// abortWithServiceError maps the service sentinels onto responses. Anything
// unrecognised is logged and reported as an opaque internal failure.
func (h *HTTPHandler) abortWithServiceError(c *gin.Context, err error, internalDetail string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Product not found")
	case errors.Is(err, service.ErrOrderNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Order not found")
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, "User not found")
	case errors.Is(err, service.ErrUsernameTaken):
		abortWithError(c, http.StatusConflict, CodeConflict, "Username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid username or password")
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, CodeInternal, internalDetail)
	}
}

type UserResponse struct {
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	CreatedAt time.Time   `json:"created_at"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponse struct {
	Message     string       `json:"message"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

type ProductResponse struct {
	ProductID     int64        `json:"product_id"`
	ArtisanID     int64        `json:"artisan_id"`
	ProductName   string       `json:"product_name"`
	Description   string       `json:"description"`
	Price         domain.Money `json:"price"`
	StockQuantity int          `json:"stock_quantity"`
	Category      string       `json:"category"`
	ImageURL      string       `json:"image_url"`
	CreatedAt     time.Time    `json:"created_at"`
}

func newProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:     p.ID,
		ArtisanID:     p.ArtisanID,
		ProductName:   p.Name,
		Description:   p.Description,
		Price:         domain.Money(p.Price),
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
	}
}

type ArtisanProductResponse struct {
	ProductResponse
	UnitsSold int          `json:"units_sold"`
	Revenue   domain.Money `json:"revenue"`
}

type OrderResponse struct {
	OrderID         int64              `json:"order_id"`
	BuyerID         int64              `json:"buyer_id"`
	ProductID       int64              `json:"product_id"`
	Quantity        int                `json:"quantity"`
	TotalPrice      domain.Money       `json:"total_price"`
	ShippingAddress string             `json:"shipping_address"`
	Status          domain.OrderStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	ProductName     string             `json:"product_name"`
	ImageURL        string             `json:"image_url,omitempty"`
	ArtisanName     string             `json:"artisan_name,omitempty"`
	BuyerName       string             `json:"buyer_name,omitempty"`
	BuyerPhone      string             `json:"buyer_phone,omitempty"`
}

func newOrderResponse(v domain.OrderView, counterpartyIsBuyer bool) OrderResponse {
	resp := OrderResponse{
		OrderID:         v.ID,
		BuyerID:         v.BuyerID,
		ProductID:       v.ProductID,
		Quantity:        v.Quantity,
		TotalPrice:      domain.Money(v.TotalPrice),
		ShippingAddress: v.ShippingAddress,
		Status:          v.Status,
		CreatedAt:       v.CreatedAt,
		ProductName:     v.ProductName,
		ImageURL:        v.ImageURL,
	}
	if counterpartyIsBuyer {
		resp.BuyerName = v.CounterpartyName
		resp.BuyerPhone = v.BuyerPhone
	} else {
		resp.ArtisanName = v.CounterpartyName
	}
	return resp
}

type PurchaseResponse struct {
	Message        string       `json:"message"`
	OrderID        int64        `json:"order_id"`
	TransactionID  int64        `json:"transaction_id"`
	ProductName    string       `json:"product_name"`
	Quantity       int          `json:"quantity"`
	TotalPrice     domain.Money `json:"total_price"`
	CommissionFee  domain.Money `json:"commission_fee"`
	ArtisanPayout  domain.Money `json:"artisan_payout"`
	RemainingStock int          `json:"remaining_stock"`
	CreatedAt      time.Time    `json:"created_at"`
}

type FinancialSplitResponse struct {
	TransactionID int64              `json:"transaction_id"`
	OrderID       int64              `json:"order_id"`
	ArtisanID     int64              `json:"artisan_id"`
	BuyerID       int64              `json:"buyer_id"`
	ProductID     int64              `json:"product_id"`
	Amount        domain.Money       `json:"amount"`
	CommissionFee domain.Money       `json:"commission_fee"`
	ArtisanPayout domain.Money       `json:"artisan_payout"`
	CreatedAt     time.Time          `json:"created_at"`
	ProductName   string             `json:"product_name"`
	ArtisanName   string             `json:"artisan_name"`
	BuyerName     string             `json:"buyer_name"`
	OrderStatus   domain.OrderStatus `json:"order_status"`
}

type FinancialSummaryResponse struct {
	TotalRevenue       domain.Money `json:"total_revenue"`
	TotalCommission    domain.Money `json:"total_commission"`
	TotalArtisanPayout domain.Money `json:"total_artisan_payout"`
	MismatchedSplits   int          `json:"mismatched_splits"`
}

type FinancialAuditResponse struct {
	Transactions []FinancialSplitResponse `json:"transactions"`
	Count        int                      `json:"count"`
	Summary      FinancialSummaryResponse `json:"summary"`
}
