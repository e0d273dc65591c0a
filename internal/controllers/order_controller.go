package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

// OrderServiceAPI defines the order reads and status updates.
type OrderServiceAPI interface {
	GetOrdersForBuyer(ctx context.Context, caller auth.Identity, rawBuyerID string) ([]models.OrderView, error)
	GetAllOrders(ctx context.Context) ([]models.OrderView, error)
	SetOrderStatus(ctx context.Context, rawOrderID string, in services.StatusInput) (*models.Order, error)
}

type OrderController struct {
	service OrderServiceAPI
}

func NewOrderController(s OrderServiceAPI) *OrderController {
	return &OrderController{service: s}
}

func (ctrl *OrderController) GetOrders(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperrors.NewUnauthenticated("Authorization token is required"))
		return
	}

	orders, err := ctrl.service.GetOrdersForBuyer(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Orders", "orders": orders})
}

func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctrl.service.GetAllOrders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "All orders", "orders": orders})
}

func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	var in services.StatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	order, err := ctrl.service.SetOrderStatus(c.Request.Context(), c.Param("orderId"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Order status updated", "order": order})
}
