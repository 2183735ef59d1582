package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

const ratingCollectionName = "ratings"

// RatingBucket is one row of the per-value distribution, sorted
// ascending by value.
type RatingBucket struct {
	Value int   `json:"value" bson:"_id"`
	Count int64 `json:"count" bson:"count"`
}

// MostRatedProduct is one row of the most-rated-products pipeline. Name
// and Image carry the product's full variant arrays, as the storefront
// consumes them.
type MostRatedProduct struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Count     int64              `json:"count" bson:"count"`
	Avg       float64            `json:"avg" bson:"avg"`
	Name      []domain.Localized `json:"name" bson:"name"`
	Image     []string           `json:"image" bson:"image"`
}

type MongoRatingStore struct {
	collection *mongo.Collection
}

func NewMongoRatingStore(db *mongo.Database) *MongoRatingStore {
	collection := db.Collection(ratingCollectionName)
	return &MongoRatingStore{collection: collection}
}

func (s *MongoRatingStore) Create(ctx context.Context, rating *domain.Rating) error {
	rating.CreatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, rating)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rating.ID = oid
	}
	log.Printf("Inserted rating with ID: %v for product %s", result.InsertedID, rating.ProductID.Hex())
	return nil
}

// List returns every rating joined with its product, newest first.
func (s *MongoRatingStore) List(ctx context.Context) ([]domain.PopulatedRating, int64, error) {
	totalCount, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	var ratings []domain.PopulatedRating
	if err := s.aggregate(ctx, ratingListPipeline(), &ratings); err != nil {
		return nil, 0, err
	}
	if ratings == nil {
		ratings = []domain.PopulatedRating{}
	}
	return ratings, totalCount, nil
}

func (s *MongoRatingStore) GetByID(ctx context.Context, id string) (*domain.Rating, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var rating domain.Rating
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("rating %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return &rating, nil
}

func (s *MongoRatingStore) Delete(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("rating %s: %w", id, ErrNotFound)
	}
	log.Printf("Deleted rating ID: %s", id)
	return nil
}

// ClearComment blanks both localized comments and returns the updated
// rating so the caller can recompute the product rollup.
func (s *MongoRatingStore) ClearComment(ctx context.Context, id string) (*domain.Rating, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"comment": domain.Localized{}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Rating
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("rating %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to clear rating comment: %w", err)
	}
	return &updated, nil
}

func (s *MongoRatingStore) ListByProduct(ctx context.Context, productID string) ([]*domain.Rating, error) {
	objID, err := parseObjectID(productID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.collection.Find(ctx, bson.M{"productId": objID})
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for product: %w", err)
	}
	defer cursor.Close(ctx)

	var ratings []*domain.Rating
	if err = cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}
	if ratings == nil {
		ratings = []*domain.Rating{}
	}
	return ratings, nil
}

func (s *MongoRatingStore) TotalRatings(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return count, nil
}

// AverageOverall returns the mean rating value across every rating,
// rounded to two decimals, 0 when there are none.
func (s *MongoRatingStore) AverageOverall(ctx context.Context) (float64, error) {
	var result []struct {
		AvgRating float64 `bson:"avgRating"`
	}
	if err := s.aggregate(ctx, averageRatingPipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return math.Round(result[0].AvgRating*100) / 100, nil
}

func (s *MongoRatingStore) Distribution(ctx context.Context) ([]RatingBucket, error) {
	var result []RatingBucket
	if err := s.aggregate(ctx, ratingDistributionPipeline(), &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []RatingBucket{}
	}
	return result, nil
}

func (s *MongoRatingStore) MostRatedProducts(ctx context.Context, limit int64) ([]MostRatedProduct, error) {
	var result []MostRatedProduct
	if err := s.aggregate(ctx, mostRatedProductsPipeline(limit), &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []MostRatedProduct{}
	}
	return result, nil
}

// WithCommentsCount counts ratings where either localized comment field
// is present and non-empty.
func (s *MongoRatingStore) WithCommentsCount(ctx context.Context) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"comment.en": bson.M{"$exists": true, "$ne": ""}},
		bson.M{"comment.ar": bson.M{"$exists": true, "$ne": ""}},
	}}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings with comments: %w", err)
	}
	return count, nil
}

func (s *MongoRatingStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run rating aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode rating aggregation: %w", err)
	}
	return nil
}

func ratingListPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productCollectionName},
			{Key: "localField", Value: "productId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func averageRatingPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$value"}}},
		}}},
	}
}

func ratingDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$value"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func mostRatedProductsPipeline(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$productId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$value"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productCollectionName},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: "$product"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "productId", Value: "$_id"},
			{Key: "count", Value: 1},
			{Key: "avg", Value: bson.D{{Key: "$round", Value: bson.A{"$avg", 1}}}},
			{Key: "name", Value: "$product.variants.name"},
			{Key: "image", Value: "$product.variants.image"},
		}}},
	}
}
