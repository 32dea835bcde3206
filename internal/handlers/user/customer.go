package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"storefront_back_end/internal/customers"
	"storefront_back_end/internal/middleware"
	"time"

	"github.com/gin-gonic/gin"
)

type CustomerSyncer interface {
	Sync(ctx context.Context, id customers.Identity) (*customers.SyncResult, error)
}

type CustomerHandler struct {
	syncer CustomerSyncer
}

func NewCustomerHandler(syncer CustomerSyncer) *CustomerHandler {
	return &CustomerHandler{syncer: syncer}
}

type syncRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SyncCustomer links the caller to a Stripe customer, creating one if needed.
// Email and name come from the token and fall back to the body.
func (h *CustomerHandler) SyncCustomer(c *gin.Context) {
	subject := middleware.Subject(c)
	if subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}

	id := customers.Identity{
		Subject: subject,
		Email:   c.GetString(middleware.ContextEmail),
		Name:    c.GetString(middleware.ContextName),
	}
	if id.Email == "" {
		id.Email = body.Email
	}
	if id.Name == "" {
		id.Name = body.Name
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	res, err := h.syncer.Sync(ctx, id)
	if errors.Is(err, customers.ErrMissingIdentity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}
	if err != nil {
		log.Printf("❌ Customer sync failed for %s: %v", subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync customer"})
		return
	}

	c.JSON(http.StatusOK, res)
}
