package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

type statusChanged struct {
	OrderID primitive.ObjectID `json:"orderId"`
	Buyer   primitive.ObjectID `json:"buyer"`
	Status  models.OrderStatus `json:"status"`
}

type OrderService struct {
	orders   repository.OrderRepo
	products repository.ProductRepo
	users    repository.UserRepo
	events   EventSink
}

func NewOrderService(orders repository.OrderRepo, products repository.ProductRepo, users repository.UserRepo, events EventSink) *OrderService {
	return &OrderService{orders: orders, products: products, users: users, events: events}
}

// GetOrdersForBuyer lists buyerID's orders. Callers other than the buyer
// need the admin role as currently stored on their account; the token's
// role claim is not trusted here.
func (s *OrderService) GetOrdersForBuyer(ctx context.Context, caller auth.Identity, rawBuyerID string) ([]models.OrderView, error) {
	buyerID, err := parseID(rawBuyerID, "buyer")
	if err != nil {
		return nil, err
	}
	if caller.UserID != buyerID.Hex() {
		role, err := s.storedRole(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !auth.CanReadOrdersOf(caller, role, buyerID.Hex()) {
			logger.Warn(ctx, "order read denied", zap.String("email", caller.Email), zap.String("buyer", buyerID.Hex()))
			return nil, apperrors.NewForbidden("UnAuthorized Access")
		}
	}

	orders, err := s.orders.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, apperrors.NewInternal("Error while getting orders", err)
	}
	return s.expand(ctx, orders), nil
}

func (s *OrderService) storedRole(ctx context.Context, caller auth.Identity) (string, error) {
	account, err := s.users.FindByEmail(ctx, normalizeEmail(caller.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewForbidden("UnAuthorized Access")
		}
		return "", apperrors.NewInternal("Error while checking access", err)
	}
	return account.Role, nil
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.OrderView, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("Error while getting orders", err)
	}
	return s.expand(ctx, orders), nil
}

// SetOrderStatus overwrites the status. Any enumerated status may follow any
// other.
func (s *OrderService) SetOrderStatus(ctx context.Context, rawOrderID string, in StatusInput) (*models.Order, error) {
	orderID, err := parseID(rawOrderID, "order")
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	status, ok := models.ParseOrderStatus(in.Status)
	if !ok {
		return nil, apperrors.NewValidation("status is invalid")
	}

	order, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Order not found")
		}
		return nil, apperrors.NewInternal("Error while updating order", err)
	}

	logger.Info(ctx, "order status changed", zap.String("order_id", order.ID.Hex()), zap.String("status", string(status)))
	emit(ctx, s.events, EventOrderStatusChanged, statusChanged{OrderID: order.ID, Buyer: order.Buyer, Status: order.Status})
	return order, nil
}

// expand resolves products (without photos) and buyer emails with one lookup
// each. Products that no longer exist are dropped from the view.
func (s *OrderService) expand(ctx context.Context, orders []models.Order) []models.OrderView {
	views := make([]models.OrderView, 0, len(orders))
	if len(orders) == 0 {
		return views
	}

	productIDs := make([]primitive.ObjectID, 0)
	buyerIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, o := range orders {
		for _, pid := range o.Products {
			if !seen[pid] {
				seen[pid] = true
				productIDs = append(productIDs, pid)
			}
		}
		if !seen[o.Buyer] {
			seen[o.Buyer] = true
			buyerIDs = append(buyerIDs, o.Buyer)
		}
	}

	products := make(map[primitive.ObjectID]*models.Product)
	found, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		logger.Warn(ctx, "order product expansion failed", zap.Error(err))
	}
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	emails := make(map[primitive.ObjectID]string)
	buyers, err := s.users.FindByIDs(ctx, buyerIDs)
	if err != nil {
		logger.Warn(ctx, "order buyer expansion failed", zap.Error(err))
	}
	for _, u := range buyers {
		emails[u.ID] = u.Email
	}

	for _, o := range orders {
		view := models.OrderView{
			ID:        o.ID,
			Products:  make([]models.ProductView, 0, len(o.Products)),
			Payment:   o.Payment,
			Buyer:     models.BuyerRef{ID: o.Buyer, Email: emails[o.Buyer]},
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		}
		for _, pid := range o.Products {
			if p, ok := products[pid]; ok {
				view.Products = append(view.Products, models.NewProductView(p, nil))
			}
		}
		views = append(views, view)
	}
	return views
}
