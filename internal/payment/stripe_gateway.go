package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/logger"
)

const gatewayName = "stripe"

// StripeGateway charges cards through Stripe PaymentIntents. The client
// token is the client secret of a fresh SetupIntent.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return NewStripeGatewayWithBackends(secretKey, nil)
}

// NewStripeGatewayWithBackends lets callers point the client at another API
// backend. A nil backends uses Stripe's defaults.
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) ClientToken(ctx context.Context) (string, error) {
	params := &stripe.SetupIntentParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Usage:              stripe.String(string(stripe.SetupIntentUsageOnSession)),
	}
	params.Context = ctx

	si, err := g.api.SetupIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create client token: %w", err)
	}
	return si.ClientSecret, nil
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(req.Currency),
		PaymentMethod:      stripe.String(req.PaymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
		Confirm:            stripe.Bool(true),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, classify(err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
	case stripe.PaymentIntentStatusProcessing:
		return nil, fmt.Errorf("payment intent %s still processing", pi.ID)
	default:
		// requires_action and friends cannot be completed server-side
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}

	logger.Log.Debug("payment intent settled", zap.String("payment_intent", pi.ID), zap.Int64("amount", pi.Amount))
	return &ChargeResult{
		TransactionID: pi.ID,
		Status:        string(pi.Status),
		AmountMinor:   pi.Amount,
		Currency:      string(pi.Currency),
		Gateway:       gatewayName,
	}, nil
}

// classify maps card and request errors to ErrDeclined. Everything else,
// including transport failures and 5xx responses, is left as an unknown outcome.
func classify(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
	}
	return fmt.Errorf("stripe charge failed: %w", err)
}
