package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Wishlist is one document per user holding the set of saved product
// ids. Adds and removes are single-document updates.
type Wishlist struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID   primitive.ObjectID   `json:"userId" bson:"userId"`
	Products []primitive.ObjectID `json:"products" bson:"products"`
}

// Contains reports whether the product is already on the wishlist.
func (w *Wishlist) Contains(productID primitive.ObjectID) bool {
	for _, id := range w.Products {
		if id == productID {
			return true
		}
	}
	return false
}

// PopulatedWishlist is a wishlist joined with its product documents.
type PopulatedWishlist struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"userId" bson:"userId"`
	Products []Product          `json:"products" bson:"products"`
}
