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

const cartCollectionName = "cartitems"

// TopCartProduct is one row of the top-products-in-carts pipeline.
type TopCartProduct struct {
	ProductID     primitive.ObjectID `json:"productId" bson:"productId"`
	TotalQuantity int64              `json:"totalQuantity" bson:"totalQuantity"`
	Name          string             `json:"name" bson:"name"`
	Image         string             `json:"image" bson:"image"`
}

type MongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	collection := db.Collection(cartCollectionName)
	return &MongoCartStore{collection: collection}
}

func (s *MongoCartStore) Create(ctx context.Context, item *domain.CartItem) error {
	item.CreatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	log.Printf("Inserted cart item with ID: %v for user %s", result.InsertedID, item.UserID.Hex())
	return nil
}

// FindByUserAndProduct returns the single cart item for the pair, or
// ErrNotFound when the user has not added the product yet.
func (s *MongoCartStore) FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) {
	var item domain.CartItem
	err := s.collection.FindOne(ctx, bson.M{"userId": userID, "productId": productID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart item for user %s product %s: %w", userID.Hex(), productID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

// IncrementQuantity adds delta to an existing item's quantity in a
// single $inc, atomic on the document, and returns the updated item.
// priceAtAddition is left untouched.
func (s *MongoCartStore) IncrementQuantity(ctx context.Context, id primitive.ObjectID, delta int) (*domain.CartItem, error) {
	update := bson.M{"$inc": bson.M{"quantity": delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.CartItem
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart item %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to increment cart quantity: %w", err)
	}
	return &updated, nil
}

func (s *MongoCartStore) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"quantity": quantity}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.CartItem
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update cart quantity: %w", err)
	}
	return &updated, nil
}

func (s *MongoCartStore) Delete(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	log.Printf("Deleted cart item ID: %s", id)
	return nil
}

func (s *MongoCartStore) ClearUser(ctx context.Context, userID primitive.ObjectID) error {
	result, err := s.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	log.Printf("Cleared %d cart items for user %s", result.DeletedCount, userID.Hex())
	return nil
}

// ListByUser returns the user's cart items joined with their products.
func (s *MongoCartStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PopulatedCartItem, error) {
	var items []domain.PopulatedCartItem
	if err := s.aggregate(ctx, cartByUserPipeline(userID), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.PopulatedCartItem{}
	}
	return items, nil
}

// DistinctUserCount counts the distinct users with at least one item.
func (s *MongoCartStore) DistinctUserCount(ctx context.Context) (int, error) {
	users, err := s.collection.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct cart users: %w", err)
	}
	return len(users), nil
}

func (s *MongoCartStore) TopProducts(ctx context.Context, limit int64) ([]TopCartProduct, error) {
	var result []TopCartProduct
	if err := s.aggregate(ctx, topCartProductsPipeline(limit), &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []TopCartProduct{}
	}
	return result, nil
}

func (s *MongoCartStore) TotalValue(ctx context.Context) (float64, error) {
	var result []struct {
		TotalValue float64 `bson:"totalValue"`
	}
	if err := s.aggregate(ctx, totalCartValuePipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].TotalValue, nil
}

func (s *MongoCartStore) TotalItems(ctx context.Context) (int64, error) {
	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := s.aggregate(ctx, totalCartItemsPipeline(), &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func (s *MongoCartStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run cart aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode cart aggregation: %w", err)
	}
	return nil
}

func cartByUserPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
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

// topCartProductsPipeline groups cart items by product, sums quantities,
// keeps the top N and joins each against its product for the first
// variant's localized name and image. Ties on totalQuantity keep
// database order.
func topCartProductsPipeline(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$productId"},
			{Key: "totalQuantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalQuantity", Value: -1}}}},
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
			{Key: "totalQuantity", Value: 1},
			{Key: "name", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$product.variants.name.en", 0}}}},
			{Key: "image", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$product.variants.image", 0}}}},
		}}},
	}
}

func totalCartValuePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalValue", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$priceAtAddition", "$quantity"}},
			}}}},
		}}},
	}
}

func totalCartItemsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
	}
}
