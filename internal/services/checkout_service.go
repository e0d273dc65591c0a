package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/awspkg"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/payment"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

// CartItem is a product as the client saw it at checkout.
type CartItem struct {
	ID    string  `json:"_id"`
	Price float64 `json:"price"`
}

// PaymentInput is the checkout body. Card wins over SelectedProduct when
// both are present.
type PaymentInput struct {
	Card            []CartItem `json:"card"`
	SelectedProduct *CartItem  `json:"selectedProduct"`
	Nonce           string     `json:"nonce"`
}

// ReconcileMessage names a payment attempt on the reconcile queue.
type ReconcileMessage struct {
	PaymentID string `json:"paymentId"`
}

type CheckoutService struct {
	users    repository.UserRepo
	payments repository.PaymentRepo
	orders   repository.OrderRepo
	gateway  payment.Gateway
	events   EventSink
	queue    ReconcileQueue
	metrics  MetricsRecorder
	currency string
	now      func() time.Time
}

func NewCheckoutService(
	users repository.UserRepo,
	payments repository.PaymentRepo,
	orders repository.OrderRepo,
	gateway payment.Gateway,
	events EventSink,
	queue ReconcileQueue,
	metrics MetricsRecorder,
	currency string,
) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		users:    users,
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		events:   events,
		queue:    queue,
		metrics:  metrics,
		currency: strings.ToLower(currency),
		now:      time.Now,
	}
}

// ClientToken fetches a payment token for the client-side form.
func (s *CheckoutService) ClientToken(ctx context.Context) (string, error) {
	token, err := s.gateway.ClientToken(ctx)
	if err != nil {
		return "", apperrors.NewUpstream("failed to get payment token", err)
	}
	return token, nil
}

func (in PaymentInput) items() []CartItem {
	if len(in.Card) > 0 {
		return in.Card
	}
	if in.SelectedProduct != nil {
		return []CartItem{*in.SelectedProduct}
	}
	return nil
}

// total sums the submitted prices and collects the product ids.
func (in PaymentInput) total() (float64, []primitive.ObjectID, error) {
	items := in.items()
	if len(items) == 0 {
		return 0, nil, apperrors.NewValidation("at least one product is required")
	}

	var total float64
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		if item.Price < 0 {
			return 0, nil, apperrors.NewValidation("price must not be negative")
		}
		total += item.Price
		if item.ID == "" {
			continue
		}
		id, err := parseID(item.ID, "product")
		if err != nil {
			return 0, nil, err
		}
		ids = append(ids, id)
	}
	if payment.ToMinorUnits(total) <= 0 {
		return 0, nil, apperrors.NewValidation("order total must be positive")
	}
	return total, ids, nil
}

// Checkout charges the buyer and stores the order. The attempt is recorded
// before the gateway is called so a settled charge is never lost; a repeated
// idempotency key replays the stored order instead of charging again.
func (s *CheckoutService) Checkout(ctx context.Context, buyerEmail string, in PaymentInput, idempotencyKey string) (*models.Order, error) {
	in.Nonce = strings.TrimSpace(in.Nonce)
	if in.Nonce == "" {
		return nil, apperrors.NewValidation("payment nonce is required")
	}
	total, productIDs, err := in.total()
	if err != nil {
		return nil, err
	}

	buyer, err := s.users.FindByEmail(ctx, normalizeEmail(buyerEmail))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("account no longer exists")
		}
		return nil, apperrors.NewInternal("failed to load buyer", err)
	}

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	existing, err := s.payments.FindByKey(ctx, key)
	switch {
	case err == nil:
		return s.replay(ctx, existing, buyer.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewInternal("failed to load payment attempt", err)
	}

	attempt := &models.PaymentAttempt{
		IdempotencyKey: key,
		Buyer:          buyer.ID,
		Products:       productIDs,
		Amount:         total,
		Currency:       s.currency,
		Nonce:          in.Nonce,
		OrderID:        primitive.NewObjectID(),
		Status:         models.PaymentPending,
	}
	if err := s.payments.Create(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("a checkout with this idempotency key is already in progress")
		}
		return nil, apperrors.NewInternal("failed to record payment attempt", err)
	}

	result, err := s.charge(ctx, attempt)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, attempt, *result)
}

// replay answers a repeated idempotency key from the stored attempt.
func (s *CheckoutService) replay(ctx context.Context, attempt *models.PaymentAttempt, buyer primitive.ObjectID) (*models.Order, error) {
	if attempt.Buyer != buyer {
		return nil, apperrors.NewConflict("idempotency key already used")
	}

	switch attempt.Status {
	case models.PaymentPersisted:
		order, err := s.orders.FindByID(ctx, attempt.OrderID)
		if err != nil {
			return nil, storeError("failed to load order", err)
		}
		logger.Info(ctx, "checkout replayed", zap.String("payment_id", attempt.ID.Hex()), zap.String("order_id", order.ID.Hex()))
		return order, nil
	case models.PaymentFailed:
		return nil, apperrors.NewUpstream("payment declined", errors.New(attempt.LastError))
	default:
		return nil, apperrors.NewConflict("payment is still being processed")
	}
}

// charge calls the gateway for attempt. A decline marks the attempt failed;
// any other error leaves it pending for the reconciler.
func (s *CheckoutService) charge(ctx context.Context, attempt *models.PaymentAttempt) (*models.PaymentResult, error) {
	res, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		AmountMinor:    payment.ToMinorUnits(attempt.Amount),
		Currency:       attempt.Currency,
		PaymentMethod:  attempt.Nonce,
		IdempotencyKey: attempt.IdempotencyKey,
		Description:    "order " + attempt.OrderID.Hex(),
		Metadata: map[string]string{
			"order_id":   attempt.OrderID.Hex(),
			"payment_id": attempt.ID.Hex(),
			"buyer_id":   attempt.Buyer.Hex(),
		},
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			if markErr := s.payments.MarkFailed(ctx, attempt.ID, err.Error()); markErr != nil {
				logger.Error(ctx, "failed to mark payment attempt failed", markErr, zap.String("payment_id", attempt.ID.Hex()))
			}
			count(ctx, s.metrics, awspkg.MetricPaymentFailed)
			return nil, apperrors.NewUpstream("payment declined", err)
		}
		if recErr := s.payments.RecordAttempt(ctx, attempt.ID, err.Error()); recErr != nil {
			logger.Error(ctx, "failed to record payment attempt", recErr, zap.String("payment_id", attempt.ID.Hex()))
		}
		logger.Warn(ctx, "payment outcome unknown", zap.String("payment_id", attempt.ID.Hex()), zap.Error(err))
		return nil, apperrors.NewUpstream("payment gateway error", err)
	}

	result := models.PaymentResult{
		Success:       true,
		TransactionID: res.TransactionID,
		Status:        res.Status,
		Amount:        attempt.Amount,
		Currency:      res.Currency,
		Gateway:       res.Gateway,
	}
	if err := s.payments.MarkCharged(ctx, attempt.ID, result); err != nil {
		// still pending; a replay with the same key returns this charge
		logger.Error(ctx, "failed to mark payment attempt charged", err,
			zap.String("payment_id", attempt.ID.Hex()), zap.String("transaction_id", result.TransactionID))
	}
	count(ctx, s.metrics, awspkg.MetricPaymentSucceeded)
	return &result, nil
}

// persist stores the order for a settled attempt. The order id is fixed by
// the attempt, so a duplicate insert means an earlier try already stored it.
func (s *CheckoutService) persist(ctx context.Context, attempt *models.PaymentAttempt, result models.PaymentResult) (*models.Order, error) {
	order := &models.Order{
		ID:        attempt.OrderID,
		Products:  attempt.Products,
		Payment:   result,
		Buyer:     attempt.Buyer,
		Status:    models.StatusNotProcess,
		CreatedAt: s.now().UTC(),
	}
	if order.Products == nil {
		order.Products = []primitive.ObjectID{}
	}

	if err := s.orders.Create(ctx, order); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	if err := s.payments.MarkPersisted(ctx, attempt.ID); err != nil {
		// the reconciler re-inserts, hits the duplicate and marks it
		logger.Warn(ctx, "failed to mark payment attempt persisted", zap.String("payment_id", attempt.ID.Hex()), zap.Error(err))
	}

	count(ctx, s.metrics, awspkg.MetricOrdersCreated)
	emit(ctx, s.events, EventOrderCreated, order)
	logger.Info(ctx, "order created", zap.String("order_id", order.ID.Hex()), zap.String("transaction_id", result.TransactionID))
	return order, nil
}

// complete persists the order and turns a failed insert into a partial
// failure that carries the transaction id.
func (s *CheckoutService) complete(ctx context.Context, attempt *models.PaymentAttempt, result models.PaymentResult) (*models.Order, error) {
	order, err := s.persist(ctx, attempt, result)
	if err == nil {
		return order, nil
	}

	logger.Error(ctx, "order not stored after settled payment", err,
		zap.String("payment_id", attempt.ID.Hex()),
		zap.String("transaction_id", result.TransactionID),
		zap.Float64("amount", result.Amount))
	s.enqueue(ctx, attempt.ID)
	count(ctx, s.metrics, awspkg.MetricPaymentPartialFailure)
	return nil, apperrors.NewPartialFailure("payment was captured but the order could not be saved", err).
		With("transactionId", result.TransactionID)
}

func (s *CheckoutService) enqueue(ctx context.Context, paymentID primitive.ObjectID) {
	if s.queue == nil {
		return
	}
	body, err := json.Marshal(ReconcileMessage{PaymentID: paymentID.Hex()})
	if err != nil {
		return
	}
	if err := s.queue.SendMessage(ctx, string(body)); err != nil {
		logger.Warn(ctx, "failed to enqueue payment for reconciliation", zap.String("payment_id", paymentID.Hex()), zap.Error(err))
	}
}
