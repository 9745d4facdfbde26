// internal/interfaces/http/handlers/order.go
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/domain/order"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/evermore-storefront/internal/pkg/pdf"
)

// ReceiptRenderer renders an order receipt document
type ReceiptRenderer interface {
	GenerateReceipt(o *order.Order) (*bytes.Buffer, error)
}

// OrderHandler handles order history endpoints
type OrderHandler struct {
	orderService *order.Service
	receipts     ReceiptRenderer
	log          *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, receipts ReceiptRenderer, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		receipts:     receipts,
		log:          log,
	}
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	email, exists := middleware.GetUserEmailFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.GetUserOrders(c.Request.Context(), email, req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// GetOrder handles GET /orders/:number
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// DownloadReceipt handles GET /orders/:number/receipt
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}

	buf, err := h.receipts.GenerateReceipt(o)
	if err != nil {
		h.log.WithError(err).WithField("order_number", o.OrderNumber).Error("Failed to generate receipt")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *OrderHandler) load(c *gin.Context) (*order.Order, bool) {
	o, err := h.orderService.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return nil, false
	}
	return o, true
}

var _ ReceiptRenderer = (*pdf.Service)(nil)
