package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (user, product) line in a cart. The first add creates
// it; later adds for the same pair increment Quantity on the same
// document. PriceAtAddition is a snapshot taken at creation and never
// updated afterwards.
type CartItem struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	ProductID       primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity        int                `json:"quantity" bson:"quantity" binding:"required,gt=0"`
	PriceAtAddition float64            `json:"priceAtAddition" bson:"priceAtAddition"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

// PopulatedCartItem is a cart item joined with its product document.
type PopulatedCartItem struct {
	CartItem `bson:",inline"`
	Product  *Product `json:"product" bson:"product"`
}
