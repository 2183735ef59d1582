// Package relevance finds products related by shared subcategory tags.
// It is a set-intersection matcher, not a ranked search engine: results
// come back in storage order.
package relevance

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

// ProductSource is the slice of the product store the matcher needs.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySubcategories(ctx context.Context, subIDs []primitive.ObjectID, exclude primitive.ObjectID) ([]*domain.Product, error)
}

// SubcategorySource is the slice of the subcategory store the matcher
// needs.
type SubcategorySource interface {
	GetByID(ctx context.Context, id string) (*domain.Subcategory, error)
	FindSharingTags(ctx context.Context, tags []string) ([]*domain.Subcategory, error)
	FindByTag(ctx context.Context, tag string) ([]*domain.Subcategory, error)
}

type Matcher struct {
	products      ProductSource
	subcategories SubcategorySource
}

func NewMatcher(products ProductSource, subcategories SubcategorySource) *Matcher {
	return &Matcher{products: products, subcategories: subcategories}
}

// RelatedProducts returns every product whose subcategory shares at
// least one tag with the given product's subcategory, excluding the
// product itself. A product whose subcategory is missing or has no
// tags relates to nothing and yields an empty slice, not an error. A
// missing product yields repository.ErrNotFound via the product
// source; any other store failure propagates.
func (m *Matcher) RelatedProducts(ctx context.Context, productID string) ([]*domain.Product, error) {
	product, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	subcategory, err := m.subcategories.GetByID(ctx, product.Categories.Sub.Hex())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return []*domain.Product{}, nil
		}
		return nil, err
	}
	if len(subcategory.Tags) == 0 {
		// No tags: nothing to relate on.
		return []*domain.Product{}, nil
	}

	related, err := m.subcategories.FindSharingTags(ctx, subcategory.Tags)
	if err != nil {
		return nil, err
	}

	relatedIDs := make([]primitive.ObjectID, 0, len(related))
	for _, sc := range related {
		relatedIDs = append(relatedIDs, sc.ID)
	}

	return m.products.FindBySubcategories(ctx, relatedIDs, product.ID)
}

// ProductsByTag returns every product whose subcategory carries the
// literal tag, or an empty slice when no subcategory matches.
func (m *Matcher) ProductsByTag(ctx context.Context, tag string) ([]*domain.Product, error) {
	subcategories, err := m.subcategories.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if len(subcategories) == 0 {
		return []*domain.Product{}, nil
	}

	subIDs := make([]primitive.ObjectID, 0, len(subcategories))
	for _, sc := range subcategories {
		subIDs = append(subIDs, sc.ID)
	}

	return m.products.FindBySubcategories(ctx, subIDs, primitive.NilObjectID)
}
