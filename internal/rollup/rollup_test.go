package rollup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

type fakeRatings struct {
	byProduct map[string][]*domain.Rating
}

func (f *fakeRatings) ListByProduct(_ context.Context, productID string) ([]*domain.Rating, error) {
	return f.byProduct[productID], nil
}

type fakeProducts struct {
	writes []rollupWrite
}

type rollupWrite struct {
	productID string
	average   float64
	count     int
}

func (f *fakeProducts) SetRatingRollup(_ context.Context, productID string, average float64, count int) error {
	f.writes = append(f.writes, rollupWrite{productID: productID, average: average, count: count})
	return nil
}

func ratingsWithValues(values ...int) []*domain.Rating {
	ratings := make([]*domain.Rating, 0, len(values))
	for _, v := range values {
		ratings = append(ratings, &domain.Rating{
			ID:    primitive.NewObjectID(),
			Value: v,
		})
	}
	return ratings
}

func TestRecomputeWritesMeanAndCount(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	ratings := &fakeRatings{byProduct: map[string][]*domain.Rating{
		productID: ratingsWithValues(3, 4, 5),
	}}
	products := &fakeProducts{}

	r := NewRecomputer(ratings, products)
	require.NoError(t, r.Recompute(context.Background(), productID))

	require.Len(t, products.writes, 1)
	require.Equal(t, productID, products.writes[0].productID)
	require.InDelta(t, 4.0, products.writes[0].average, 1e-9)
	require.Equal(t, 3, products.writes[0].count)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	ratings := &fakeRatings{byProduct: map[string][]*domain.Rating{
		productID: ratingsWithValues(1, 2, 5, 5),
	}}
	products := &fakeProducts{}

	r := NewRecomputer(ratings, products)
	require.NoError(t, r.Recompute(context.Background(), productID))
	require.NoError(t, r.Recompute(context.Background(), productID))

	require.Len(t, products.writes, 2)
	require.Equal(t, products.writes[0], products.writes[1])
}

func TestRecomputeSkipsWriteWithNoRatings(t *testing.T) {
	ratings := &fakeRatings{byProduct: map[string][]*domain.Rating{}}
	products := &fakeProducts{}

	r := NewRecomputer(ratings, products)
	require.NoError(t, r.Recompute(context.Background(), primitive.NewObjectID().Hex()))

	require.Empty(t, products.writes)
}
