package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderReader interface {
	GetCustomerBySubject(ctx context.Context, subject string) (*models.Customer, error)
	ListOrderSummaries(ctx context.Context, customerID uuid.UUID) ([]models.OrderSummary, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.OrderDetail, error)
}

type OrderHandler struct {
	store OrderReader
}

func NewOrderHandler(store OrderReader) *OrderHandler {
	return &OrderHandler{store: store}
}

// GetMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	subject := middleware.Subject(c)
	if subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.store.GetCustomerBySubject(ctx, subject)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		c.JSON(http.StatusOK, []models.OrderSummary{})
		return
	}
	if err != nil {
		log.Println("❌ Customer lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	orders, err := h.store.ListOrderSummaries(ctx, customer.ID)
	if err != nil {
		log.Println("❌ Order history query failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderByID returns one order. Orders of other customers look missing.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	subject := middleware.Subject(c)
	if subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.store.GetOrderDetail(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) || (err == nil && order.OwnerSubject != subject) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		log.Println("❌ Order detail query failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	c.JSON(http.StatusOK, order)
}
