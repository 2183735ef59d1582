package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

const wishlistCollectionName = "wishlists"

type MongoWishlistStore struct {
	collection *mongo.Collection
}

func NewMongoWishlistStore(db *mongo.Database) *MongoWishlistStore {
	collection := db.Collection(wishlistCollectionName)
	return &MongoWishlistStore{collection: collection}
}

// GetByUser returns the user's wishlist, or an empty one when none has
// been created yet.
func (s *MongoWishlistStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Wishlist{UserID: userID, Products: []primitive.ObjectID{}}, nil
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}
	if wishlist.Products == nil {
		wishlist.Products = []primitive.ObjectID{}
	}
	return &wishlist, nil
}

// GetPopulated joins the wishlist's product ids against the products
// collection.
func (s *MongoWishlistStore) GetPopulated(ctx context.Context, userID primitive.ObjectID) (*domain.PopulatedWishlist, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productCollectionName},
			{Key: "localField", Value: "products"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "products"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to populate wishlist: %w", err)
	}
	defer cursor.Close(ctx)

	var wishlists []domain.PopulatedWishlist
	if err := cursor.All(ctx, &wishlists); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist: %w", err)
	}
	if len(wishlists) == 0 {
		return &domain.PopulatedWishlist{UserID: userID, Products: []domain.Product{}}, nil
	}
	if wishlists[0].Products == nil {
		wishlists[0].Products = []domain.Product{}
	}
	return &wishlists[0], nil
}

// AddProduct adds the product to the user's wishlist set, creating the
// wishlist document on first use. $addToSet on an upserted document is
// a single-document atomic operation.
func (s *MongoWishlistStore) AddProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error) {
	update := bson.M{"$addToSet": bson.M{"products": productID}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wishlist domain.Wishlist
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&wishlist)
	if err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	log.Printf("Added product %s to wishlist of user %s", productID.Hex(), userID.Hex())
	return &wishlist, nil
}

// RemoveProduct pulls the product from the user's wishlist set.
func (s *MongoWishlistStore) RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error) {
	update := bson.M{"$pull": bson.M{"products": productID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wishlist domain.Wishlist
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("wishlist for user %s: %w", userID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return &wishlist, nil
}
