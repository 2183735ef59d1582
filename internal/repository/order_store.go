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

const orderCollectionName = "orders"

type MongoOrderStore struct {
	collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	collection := db.Collection(orderCollectionName)
	return &MongoOrderStore{collection: collection}
}

func (s *MongoOrderStore) Create(ctx context.Context, order *domain.Order) error {
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	if order.Status == "" {
		order.Status = domain.StatusPending
	}

	result, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	log.Printf("Inserted order with ID: %v for user %s", result.InsertedID, order.UserID.Hex())
	return nil
}

func (s *MongoOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	log.Printf("Updated order status ID: %s to %s", id, status)
	return nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// HasPaidOrderForProduct reports whether the user has at least one paid
// order containing the product. The rating purchase gate depends on it.
func (s *MongoOrderStore) HasPaidOrderForProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"user_id":          userID,
		"status":           domain.StatusPaid,
		"items.product_id": productID,
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check paid orders: %w", err)
	}
	return count > 0, nil
}
