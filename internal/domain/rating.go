package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a 1-5 review left by a user on a product they have paid
// for. The product's averageRating/ratingCount are recomputed from the
// full rating set after every creation and after a comment is cleared.
type Rating struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Value     int                `json:"value" bson:"value" binding:"required,min=1,max=5"`
	Comment   Localized          `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// HasComment reports whether either localized comment is non-empty.
func (r *Rating) HasComment() bool {
	return r.Comment.EN != "" || r.Comment.AR != ""
}

// PopulatedRating is a rating joined with its product document.
type PopulatedRating struct {
	Rating  `bson:",inline"`
	Product *Product `json:"product" bson:"product"`
}
