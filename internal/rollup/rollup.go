// Package rollup maintains the derived averageRating/ratingCount
// fields on products. Recomputation is explicit and full: callers
// invoke it after the writes that require it, it is never an ambient
// side effect of the store.
package rollup

import (
	"context"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// RatingSource is the slice of the rating store the recomputer needs.
type RatingSource interface {
	ListByProduct(ctx context.Context, productID string) ([]*domain.Rating, error)
}

// ProductSink receives the recomputed rollup fields.
type ProductSink interface {
	SetRatingRollup(ctx context.Context, productID string, average float64, count int) error
}

type Recomputer struct {
	ratings  RatingSource
	products ProductSink
}

func NewRecomputer(ratings RatingSource, products ProductSink) *Recomputer {
	return &Recomputer{ratings: ratings, products: products}
}

// Recompute reads every rating for the product and overwrites the
// product's rollup fields with the count and arithmetic mean. O(n) in
// the product's ratings; fine at per-product review volumes. With zero
// ratings there is no meaningful mean, so nothing is written.
//
// The read-then-write pair is not transactional: two concurrent
// recomputes for the same product can interleave and the later write
// wins with a possibly stale count.
func (r *Recomputer) Recompute(ctx context.Context, productID string) error {
	ratings, err := r.ratings.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}

	count := len(ratings)
	if count == 0 {
		return nil
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating.Value
	}
	average := float64(sum) / float64(count)

	return r.products.SetRatingRollup(ctx, productID, average, count)
}
