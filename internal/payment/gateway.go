package payment

import (
	"context"
	"errors"
	"math"
)

// ErrDeclined marks a definitive refusal by the gateway. Charges failing with
// any other error have an unknown outcome and may be retried with the same
// idempotency key.
var ErrDeclined = errors.New("payment declined")

// ChargeRequest asks for an immediately settled charge.
type ChargeRequest struct {
	// AmountMinor is the amount in the currency's minor unit (cents).
	AmountMinor    int64
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
	Description    string
	Metadata       map[string]string
}

// ChargeResult describes a settled charge.
type ChargeResult struct {
	TransactionID string
	Status        string
	AmountMinor   int64
	Currency      string
	Gateway       string
}

type Gateway interface {
	// ClientToken returns a token the client uses to collect a payment method.
	ClientToken(ctx context.Context) (string, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// ToMinorUnits converts a major-unit amount to minor units, rounding to the
// nearest cent.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
