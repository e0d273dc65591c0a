package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusNotProcess OrderStatus = "Not Process"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancel     OrderStatus = "Cancel"
)

// OrderStatuses lists every accepted status.
var OrderStatuses = []OrderStatus{StatusNotProcess, StatusProcessing, StatusShipped, StatusDelivered, StatusCancel}

// ParseOrderStatus accepts the enumerated values and the legacy "Deliverd"
// spelling stored by older clients.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "Deliverd" {
		return StatusDelivered, true
	}
	for _, s := range OrderStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// PaymentResult is the gateway outcome stored on the order as returned.
type PaymentResult struct {
	Success       bool    `bson:"success" json:"success"`
	TransactionID string  `bson:"transactionId" json:"transactionId"`
	Status        string  `bson:"status" json:"status"`
	Amount        float64 `bson:"amount" json:"amount"`
	Currency      string  `bson:"currency" json:"currency"`
	Gateway       string  `bson:"gateway" json:"gateway"`
}

// Order holds weak references to its products and buyer.
type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   PaymentResult        `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status    OrderStatus          `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// BuyerRef is the expanded buyer on an order listing.
type BuyerRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Email string             `json:"email,omitempty"`
}

// OrderView is an order with products (no photos) and buyer email expanded.
// Products that no longer exist are left out.
type OrderView struct {
	ID        primitive.ObjectID `json:"_id"`
	Products  []ProductView      `json:"products"`
	Payment   PaymentResult      `json:"payment"`
	Buyer     BuyerRef           `json:"buyer"`
	Status    OrderStatus        `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}
