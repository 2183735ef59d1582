package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusFailed    OrderStatus = "failed"
)

type OrderItem struct {
	ProductID    primitive.ObjectID `json:"product_id" bson:"product_id" binding:"required"`
	Quantity     int                `json:"quantity" bson:"quantity" binding:"required,gt=0"`
	PriceAtOrder float64            `json:"price_at_order" bson:"price_at_order"`
}

// Order is consulted by the rating purchase gate: a user may only rate
// products that appear in one of their paid orders.
type Order struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items       []OrderItem        `json:"items" bson:"items"`
	TotalAmount float64            `json:"total_amount" bson:"total_amount"`
	Status      OrderStatus        `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type CreateOrderInput struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

type OrderItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateOrderStatusInput struct {
	Status OrderStatus `json:"status" binding:"required"`
}
