package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Reconciliation only ever produces pending or failed.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusFailed     = "failed"
)

// OrderStatuses lists every status an admin may set.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusFailed,
}

// OrderItem is one purchased line. No unit price is kept; only the order
// amount is recorded.
type OrderItem struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
}

// Order is the durable record of one checkout outcome. OrderID holds the
// payment intent id and is unique.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID   string             `bson:"orderId" json:"orderId"`
	Products  []OrderItem        `bson:"products" json:"products"`
	Amount    float64            `bson:"amount" json:"amount"`
	Email     string             `bson:"email" json:"email"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
