package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
)

type CreateProductRequest struct {
	ProductName   string          `json:"product_name" binding:"required,max=200"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity *int            `json:"stock_quantity" binding:"required"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	availableOnly, _ := strconv.ParseBool(c.DefaultQuery("available_only", "false"))

	products, err := h.deps.Catalog.ListProducts(c.Request.Context(), availableOnly)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch products")
		return
	}

	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = newProductResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"products": resp, "count": len(resp)})
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.deps.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, newProductResponse(product))
}

func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "product_name, price and stock_quantity are required")
		return
	}

	product, err := h.deps.Catalog.CreateProduct(c.Request.Context(), currentClaims(c).UserID, service.NewProductInput{
		Name:          req.ProductName,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: *req.StockQuantity,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
	}, c.ClientIP())
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": newProductResponse(product),
	})
}

func (h *HTTPHandler) ListArtisanProducts(c *gin.Context) {
	products, err := h.deps.Catalog.ListArtisanProducts(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch products")
		return
	}

	resp := make([]ArtisanProductResponse, len(products))
	for i, p := range products {
		resp[i] = ArtisanProductResponse{
			ProductResponse: newProductResponse(p.Product),
			UnitsSold:       p.UnitsSold,
			Revenue:         domain.Money(p.Revenue),
		}
	}
	c.JSON(http.StatusOK, gin.H{"products": resp, "count": len(resp)})
}

// pathID parses the :id segment and rejects the request when it is not a
// positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
