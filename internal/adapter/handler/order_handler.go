package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HTTPHandler) ListBuyerOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListBuyerOrders(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch orders")
		return
	}
	writeOrders(c, orders, false)
}

func (h *HTTPHandler) ListArtisanOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListArtisanOrders(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch orders")
		return
	}
	writeOrders(c, orders, true)
}

func writeOrders(c *gin.Context, orders []domain.OrderView, counterpartyIsBuyer bool) {
	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = newOrderResponse(o, counterpartyIsBuyer)
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp, "count": len(resp)})
}

// UpdateOrderStatus moves an order through fulfilment. It never touches
// product stock.
func (h *HTTPHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "status is required")
		return
	}

	status := domain.OrderStatus(req.Status)
	err := h.deps.Orders.UpdateStatus(c.Request.Context(), currentClaims(c).UserID, id, status, c.ClientIP())
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Order status updated successfully",
		"order_id":   id,
		"new_status": status,
	})
}
