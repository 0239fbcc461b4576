package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
	"github.com/rl1809/artisan-market/internal/port"
)

const headerIdempotencyKey = "Idempotency-Key"

type Purchaser interface {
	Purchase(ctx context.Context, intent domain.PurchaseIntent) domain.PurchaseResult
}

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.User, string, error)
	Login(ctx context.Context, username, password string) (domain.User, string, error)
	Me(ctx context.Context, userID int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type CatalogService interface {
	CreateProduct(ctx context.Context, artisanID int64, in service.NewProductInput, clientAddress string) (domain.Product, error)
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error)
	ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error)
}

type OrderService interface {
	ListBuyerOrders(ctx context.Context, buyerID int64) ([]domain.OrderView, error)
	ListArtisanOrders(ctx context.Context, artisanID int64) ([]domain.OrderView, error)
	UpdateStatus(ctx context.Context, actorID, orderID int64, status domain.OrderStatus, clientAddress string) error
}

type FinancialAuditor interface {
	FinancialReport(ctx context.Context) (service.FinancialReport, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Purchases Purchaser
	Accounts  AccountService
	Catalog   CatalogService
	Orders    OrderService
	Audit     FinancialAuditor
	Tokens    TokenParser
	// Idempotency is optional; without it the Idempotency-Key header is ignored.
	Idempotency port.CacheRepository
	Checks      map[string]HealthCheck
	Logger      *zap.Logger
}

type HTTPHandler struct {
	deps   Dependencies
	logger *zap.Logger
}

func NewHTTPHandler(deps Dependencies) *HTTPHandler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &HTTPHandler{deps: deps, logger: deps.Logger}
}

// Router builds the gin engine. Extra middleware, such as tracing, runs
// before access logging.
func (h *HTTPHandler) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID())
	r.Use(middleware...)
	r.Use(AccessLog(h.logger))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	authed := api.Group("", Authenticate(h.deps.Tokens))
	authed.GET("/me", h.Me)
	authed.POST("/products", RequireRole(domain.RoleArtisan), h.CreateProduct)
	authed.GET("/artisan/products", RequireRole(domain.RoleArtisan), h.ListArtisanProducts)
	authed.POST("/purchase/lock", RequireRole(domain.RoleBuyer), h.Purchase)
	authed.GET("/buyer/orders", RequireRole(domain.RoleBuyer), h.ListBuyerOrders)
	authed.GET("/artisan/orders", RequireRole(domain.RoleArtisan), h.ListArtisanOrders)
	authed.PUT("/orders/:id/status", RequireRole(domain.RoleArtisan, domain.RoleAdmin), h.UpdateOrderStatus)
	authed.GET("/admin/audit/transactions", RequireRole(domain.RoleAdmin), h.FinancialAudit)
	authed.GET("/admin/users", RequireRole(domain.RoleAdmin), h.ListUsers)

	return r
}

func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps.Checks))
	for name, check := range h.deps.Checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

type PurchaseRequest struct {
	ProductID       int64  `json:"product_id" binding:"required,gt=0"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

// Purchase buys stock of one product through the locked purchase
// transaction.
func (h *HTTPHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "product_id, a positive quantity and shipping_address are required")
		return
	}
	claims := currentClaims(c)
	ctx := c.Request.Context()

	idempotencyKey := ""
	if key := c.GetHeader(headerIdempotencyKey); key != "" && h.deps.Idempotency != nil {
		idempotencyKey = fmt.Sprintf("%d:%s", claims.UserID, key)
		reserved, err := h.deps.Idempotency.ReserveIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, CodeInternal, "Purchase failed. Please try again.")
			return
		}
		if !reserved {
			abortWithError(c, http.StatusConflict, CodeDuplicateRequest, "A purchase with this idempotency key was already submitted")
			return
		}
	}

	result := h.deps.Purchases.Purchase(ctx, domain.PurchaseIntent{
		BuyerID:         claims.UserID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
		ClientAddress:   c.ClientIP(),
	})

	if result.Outcome != domain.OutcomeSuccess && idempotencyKey != "" {
		if err := h.deps.Idempotency.ReleaseIdempotencyKey(context.WithoutCancel(ctx), idempotencyKey); err != nil {
			h.logger.Warn("release idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	status, body := purchaseHTTPResponse(result)
	if status == http.StatusInternalServerError {
		_ = c.Error(result.Err)
	}
	c.JSON(status, body)
}

func purchaseHTTPResponse(result domain.PurchaseResult) (int, any) {
	code := result.Outcome.Code()
	switch result.Outcome {
	case domain.OutcomeSuccess:
		r := result.Receipt
		return http.StatusOK, PurchaseResponse{
			Message:        "Purchase successful",
			OrderID:        r.OrderID,
			TransactionID:  r.PaymentSplitID,
			ProductName:    r.ProductName,
			Quantity:       r.Quantity,
			TotalPrice:     domain.Money(r.TotalPrice),
			CommissionFee:  domain.Money(r.CommissionFee),
			ArtisanPayout:  domain.Money(r.ArtisanPayout),
			RemainingStock: r.RemainingStock,
			CreatedAt:      r.CreatedAt,
		}
	case domain.OutcomeNotFound:
		return http.StatusNotFound, ErrorResponse{Code: code, Detail: "Product not found"}
	case domain.OutcomeLockContention:
		return http.StatusConflict, ErrorResponse{Code: code, Detail: "Product is currently being purchased by another customer. Please try again."}
	case domain.OutcomeSoldOut:
		return http.StatusBadRequest, ErrorResponse{Code: code, Detail: "SOLD OUT: This item is no longer available"}
	case domain.OutcomeInsufficientStock:
		available := result.Available
		return http.StatusBadRequest, ErrorResponse{
			Code:      code,
			Detail:    fmt.Sprintf("Insufficient stock. Only %d items available", available),
			Available: &available,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: code, Detail: "Purchase failed. Please try again."}
	}
}
