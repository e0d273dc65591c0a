package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

// IdempotencyHeader lets a client retry a checkout without a second charge.
const IdempotencyHeader = "Idempotency-Key"

// CheckoutServiceAPI defines the payment operations.
type CheckoutServiceAPI interface {
	ClientToken(ctx context.Context) (string, error)
	Checkout(ctx context.Context, buyerEmail string, in services.PaymentInput, idempotencyKey string) (*models.Order, error)
}

type PaymentController struct {
	service CheckoutServiceAPI
}

func NewPaymentController(s CheckoutServiceAPI) *PaymentController {
	return &PaymentController{service: s}
}

func (pc *PaymentController) ClientToken(c *gin.Context) {
	token, err := pc.service.ClientToken(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientToken": token})
}

func (pc *PaymentController) Checkout(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperrors.NewUnauthenticated("Authorization token is required"))
		return
	}

	var in services.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	order, err := pc.service.Checkout(c.Request.Context(), caller.Email, in, c.GetHeader(IdempotencyHeader))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "success": true, "order": order})
}
