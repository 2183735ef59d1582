package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Localized holds a string in both storefront languages.
type Localized struct {
	EN string `json:"en" bson:"en"`
	AR string `json:"ar" bson:"ar"`
}

// CategoryRefs points a product at its main category and subcategory.
type CategoryRefs struct {
	Main primitive.ObjectID `json:"main" bson:"main"`
	Sub  primitive.ObjectID `json:"sub" bson:"sub"`
}

// Variant is a purchasable configuration of a product, embedded in it.
// Variants have their own _id so they can be addressed and mutated
// individually, but no identity outside their product.
type Variant struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          Localized          `json:"name" bson:"name"`
	Price         float64            `json:"price" bson:"price" binding:"required,gt=0"`
	DiscountPrice float64            `json:"discountPrice" bson:"discountPrice"`
	InStock       int                `json:"inStock" bson:"inStock" binding:"gte=0"`
	Image         string             `json:"image" bson:"image"`
	Images        []string           `json:"images" bson:"images"`
	AverageRating float64            `json:"averageRating" bson:"averageRating"`
	RatingCount   int                `json:"ratingCount" bson:"ratingCount"`
}

// DiscountValid reports whether the variant's discount price, when set,
// is strictly below its regular price.
func (v Variant) DiscountValid() bool {
	return v.DiscountPrice == 0 || v.DiscountPrice < v.Price
}

// EffectivePrice is the discount price when one is set, otherwise the
// regular price.
func (v Variant) EffectivePrice() float64 {
	if v.DiscountPrice > 0 {
		return v.DiscountPrice
	}
	return v.Price
}

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Brand       string             `json:"brand" bson:"brand"`
	Categories  CategoryRefs       `json:"categories" bson:"categories"`
	Description Localized          `json:"description" bson:"description"`
	Material    Localized          `json:"material" bson:"material"`
	Variants    []Variant          `json:"variants" bson:"variants"`

	// Derived rating rollup, overwritten wholesale whenever a rating is
	// created or its comment is cleared. Never written independently.
	AverageRating float64 `json:"averageRating" bson:"averageRating"`
	RatingCount   int     `json:"ratingCount" bson:"ratingCount"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TotalStock sums the stock of every variant.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.InStock
	}
	return total
}

// VariantIndex returns the index of the variant with the given id, or -1.
func (p *Product) VariantIndex(id primitive.ObjectID) int {
	for i, v := range p.Variants {
		if v.ID == id {
			return i
		}
	}
	return -1
}
