package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	// PaymentPending is written before the gateway is called.
	PaymentPending PaymentStatus = "pending"
	// PaymentCharged means the gateway settled and the order is not stored yet.
	PaymentCharged PaymentStatus = "charged"
	// PaymentPersisted means the order exists.
	PaymentPersisted PaymentStatus = "persisted"
	// PaymentFailed means the gateway declined.
	PaymentFailed PaymentStatus = "failed"
)

// PaymentAttempt is the durable record of one checkout. OrderID is allocated
// up front so storing the order is idempotent.
type PaymentAttempt struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	IdempotencyKey string               `bson:"idempotencyKey" json:"idempotencyKey"`
	Buyer          primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Products       []primitive.ObjectID `bson:"products" json:"products"`
	Amount         float64              `bson:"amount" json:"amount"`
	Currency       string               `bson:"currency" json:"currency"`
	Nonce          string               `bson:"nonce" json:"-"`
	OrderID        primitive.ObjectID   `bson:"orderId" json:"orderId"`
	Status         PaymentStatus        `bson:"status" json:"status"`
	TransactionID  string               `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Result         *PaymentResult       `bson:"result,omitempty" json:"result,omitempty"`
	LastError      string               `bson:"lastError,omitempty" json:"lastError,omitempty"`
	Attempts       int                  `bson:"attempts" json:"attempts"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
