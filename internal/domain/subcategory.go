package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Subcategory groups products and carries the tag set used for
// related-product matching.
type Subcategory struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name Localized          `json:"name" bson:"name"`
	Tags []string           `json:"tags" bson:"tags"`
}

// SharesTagWith reports whether the two subcategories have at least one
// tag in common.
func (s *Subcategory) SharesTagWith(other *Subcategory) bool {
	for _, a := range s.Tags {
		for _, b := range other.Tags {
			if a == b {
				return true
			}
		}
	}
	return false
}
