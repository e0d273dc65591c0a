package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/awspkg"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

const (
	reconcileBatch = 50

	// chargeReplayWindow bounds how long a pending attempt is replayed. Stripe
	// drops idempotency keys after 24 hours, and a replay past that could
	// charge the buyer a second time.
	chargeReplayWindow = 23 * time.Hour
)

// Reconciler finishes checkouts that stopped between the charge and the
// order insert.
type Reconciler struct {
	checkout *CheckoutService
	payments repository.PaymentRepo
	grace    time.Duration
	now      func() time.Time
}

func NewReconciler(checkout *CheckoutService, payments repository.PaymentRepo, grace time.Duration) *Reconciler {
	return &Reconciler{checkout: checkout, payments: payments, grace: grace, now: time.Now}
}

// Start sweeps every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.Info("payment reconciler started", zap.Duration("interval", interval), zap.Duration("grace", r.grace))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("payment reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("payment reconcile sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep reconciles attempts left pending or charged for longer than the
// grace period and returns how many it finished or retired.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.grace)
	stale, err := r.payments.FindStale(ctx, []models.PaymentStatus{models.PaymentPending, models.PaymentCharged}, cutoff, reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to load stale payments: %w", err)
	}

	done := 0
	for i := range stale {
		if err := r.reconcile(ctx, &stale[i]); err != nil {
			logger.Log.Warn("payment not reconciled", zap.String("payment_id", stale[i].ID.Hex()), zap.Error(err))
			continue
		}
		done++
	}
	if done > 0 {
		logger.Log.Info("payments reconciled", zap.Int("count", done))
	}
	return done, nil
}

// HandleMessage reconciles the attempt named by a queue message. Unknown
// attempts are dropped.
func (r *Reconciler) HandleMessage(ctx context.Context, body string) error {
	var msg ReconcileMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		logger.Log.Warn("discarding malformed reconcile message", zap.Error(err))
		return nil
	}
	id, err := parseID(msg.PaymentID, "payment")
	if err != nil {
		logger.Log.Warn("discarding reconcile message", zap.String("payment_id", msg.PaymentID))
		return nil
	}

	attempt, err := r.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.reconcile(ctx, attempt)
}

func (r *Reconciler) reconcile(ctx context.Context, attempt *models.PaymentAttempt) error {
	switch attempt.Status {
	case models.PaymentPending:
		if r.pastReplayWindow(attempt) {
			return r.retire(ctx, attempt)
		}
		// the gateway deduplicates on the idempotency key
		result, err := r.checkout.charge(ctx, attempt)
		if err != nil {
			return err
		}
		if _, err := r.checkout.persist(ctx, attempt, *result); err != nil {
			return err
		}
	case models.PaymentCharged:
		if attempt.Result == nil {
			return fmt.Errorf("charged payment %s has no result", attempt.ID.Hex())
		}
		if _, err := r.checkout.persist(ctx, attempt, *attempt.Result); err != nil {
			return err
		}
	default:
		return nil
	}
	count(ctx, r.checkout.metrics, awspkg.MetricPaymentsReconciled)
	return nil
}

func (r *Reconciler) pastReplayWindow(attempt *models.PaymentAttempt) bool {
	created := attempt.CreatedAt
	if created.IsZero() {
		created = attempt.ID.Timestamp()
	}
	return r.now().Sub(created) > chargeReplayWindow
}

// retire fails a pending attempt whose outcome can no longer be settled
// safely through the gateway. The buyer may or may not have been charged, so
// the record keeps what an operator needs to check it by hand.
func (r *Reconciler) retire(ctx context.Context, attempt *models.PaymentAttempt) error {
	reason := "outcome unknown after idempotency window; manual review required"
	if attempt.LastError != "" {
		reason += ": last error: " + attempt.LastError
	}
	if err := r.payments.MarkFailed(ctx, attempt.ID, reason); err != nil {
		return fmt.Errorf("failed to retire payment %s: %w", attempt.ID.Hex(), err)
	}

	logger.Log.Error("payment attempt retired unsettled",
		zap.String("payment_id", attempt.ID.Hex()),
		zap.String("idempotency_key", attempt.IdempotencyKey),
		zap.String("order_id", attempt.OrderID.Hex()),
		zap.String("buyer_id", attempt.Buyer.Hex()),
		zap.Float64("amount", attempt.Amount),
		zap.String("currency", attempt.Currency),
		zap.Int("attempts", attempt.Attempts),
		zap.String("last_error", attempt.LastError),
		zap.Time("created_at", attempt.CreatedAt),
	)
	count(ctx, r.checkout.metrics, awspkg.MetricPaymentFailed)
	return nil
}
