package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

const productCollectionName = "products"

// TopRatedVariant is a flattened variant projected by the top-rated
// analytics pipeline.
type TopRatedVariant struct {
	Name          domain.Localized `json:"name" bson:"name"`
	AverageRating float64          `json:"averageRating" bson:"averageRating"`
	RatingCount   int              `json:"ratingCount" bson:"ratingCount"`
	Image         string           `json:"image" bson:"image"`
}

type MongoProductStore struct {
	collection *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	collection := db.Collection(productCollectionName)
	return &MongoProductStore{collection: collection}
}

func (s *MongoProductStore) Create(ctx context.Context, product *domain.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	for i := range product.Variants {
		if product.Variants[i].ID.IsZero() {
			product.Variants[i].ID = primitive.NewObjectID()
		}
	}

	result, err := s.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	log.Printf("Inserted product with ID: %v", result.InsertedID)
	return nil
}

func (s *MongoProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// List returns every product matching the filter. Pagination is
// intentionally not applied.
func (s *MongoProductStore) List(ctx context.Context, filter bson.M) ([]*domain.Product, int64, error) {
	if filter == nil {
		filter = bson.M{}
	}

	totalCount, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return products, totalCount, nil
}

func (s *MongoProductStore) Update(ctx context.Context, id string, set bson.M) (*domain.Product, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	log.Printf("Updated product ID: %s", id)
	return &updated, nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	log.Printf("Deleted product ID: %s", id)
	return nil
}

// AddVariant appends a variant to the product's variants array. The
// push is a single-document update and therefore atomic against
// concurrent writers on the same product.
func (s *MongoProductStore) AddVariant(ctx context.Context, id string, variant domain.Variant) (*domain.Product, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	if variant.ID.IsZero() {
		variant.ID = primitive.NewObjectID()
	}

	update := bson.M{
		"$push": bson.M{"variants": variant},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to add variant: %w", err)
	}
	return &updated, nil
}

// SetVariants overwrites the whole variants array. Variant updates are
// read-whole, modify-index, write-whole; not atomic across the read and
// the write.
func (s *MongoProductStore) SetVariants(ctx context.Context, id string, variants []domain.Variant) (*domain.Product, error) {
	return s.Update(ctx, id, bson.M{"variants": variants})
}

func (s *MongoProductStore) RemoveVariant(ctx context.Context, id string, variantID primitive.ObjectID) (*domain.Product, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$pull": bson.M{"variants": bson.M{"_id": variantID}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to remove variant: %w", err)
	}
	return &updated, nil
}

// SetRatingRollup overwrites the derived averageRating/ratingCount
// fields. Only the rating rollup calls this.
func (s *MongoProductStore) SetRatingRollup(ctx context.Context, id string, average float64, count int) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"averageRating": average,
		"ratingCount":   count,
	}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update rating rollup: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

// FindBySubcategories returns products whose subcategory is in the
// given set, excluding one product id. Storage order, no ranking.
func (s *MongoProductStore) FindBySubcategories(ctx context.Context, subIDs []primitive.ObjectID, exclude primitive.ObjectID) ([]*domain.Product, error) {
	filter := bson.M{
		"_id":            bson.M{"$ne": exclude},
		"categories.sub": bson.M{"$in": subIDs},
	}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by subcategories: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

func (s *MongoProductStore) TotalProducts(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (s *MongoProductStore) TotalVariants(ctx context.Context) (int64, error) {
	var result []struct {
		TotalVariants int64 `bson:"totalVariants"`
	}
	if err := s.aggregate(ctx, totalVariantsPipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].TotalVariants, nil
}

func (s *MongoProductStore) BrandsCount(ctx context.Context) (int64, error) {
	var result []struct {
		BrandsCount int64 `bson:"brandsCount"`
	}
	if err := s.aggregate(ctx, brandsCountPipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].BrandsCount, nil
}

func (s *MongoProductStore) TopRatedVariants(ctx context.Context, limit int64) ([]TopRatedVariant, error) {
	var result []TopRatedVariant
	if err := s.aggregate(ctx, topRatedVariantsPipeline(limit), &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []TopRatedVariant{}
	}
	return result, nil
}

func (s *MongoProductStore) DiscountedVariantsCount(ctx context.Context) (int64, error) {
	var result []struct {
		DiscountedVariants int64 `bson:"discountedVariants"`
	}
	if err := s.aggregate(ctx, discountedVariantsPipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].DiscountedVariants, nil
}

func (s *MongoProductStore) LowStockVariantsCount(ctx context.Context, threshold int) (int64, error) {
	var result []struct {
		LowStockVariants int64 `bson:"lowStockVariants"`
	}
	if err := s.aggregate(ctx, lowStockVariantsPipeline(threshold), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].LowStockVariants, nil
}

func (s *MongoProductStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run product aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode product aggregation: %w", err)
	}
	return nil
}

func totalVariantsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "variantCount", Value: bson.D{{Key: "$size", Value: "$variants"}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalVariants", Value: bson.D{{Key: "$sum", Value: "$variantCount"}}},
		}}},
	}
}

func brandsCountPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$brand"}}}},
		{{Key: "$count", Value: "brandsCount"}},
	}
}

func topRatedVariantsPipeline(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$variants"}},
		{{Key: "$sort", Value: bson.D{{Key: "variants.averageRating", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: "$variants.name"},
			{Key: "averageRating", Value: "$variants.averageRating"},
			{Key: "ratingCount", Value: "$variants.ratingCount"},
			{Key: "image", Value: "$variants.image"},
		}}},
	}
}

func discountedVariantsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$variants"}},
		{{Key: "$match", Value: bson.D{{Key: "variants.discountPrice", Value: bson.D{{Key: "$gt", Value: 0}}}}}},
		{{Key: "$count", Value: "discountedVariants"}},
	}
}

func lowStockVariantsPipeline(threshold int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$variants"}},
		{{Key: "$match", Value: bson.D{{Key: "variants.inStock", Value: bson.D{{Key: "$lte", Value: threshold}}}}}},
		{{Key: "$count", Value: "lowStockVariants"}},
	}
}
