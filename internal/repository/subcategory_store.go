package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

const subcategoryCollectionName = "subcategories"

type MongoSubcategoryStore struct {
	collection *mongo.Collection
}

func NewMongoSubcategoryStore(db *mongo.Database) *MongoSubcategoryStore {
	collection := db.Collection(subcategoryCollectionName)
	return &MongoSubcategoryStore{collection: collection}
}

func (s *MongoSubcategoryStore) Create(ctx context.Context, subcategory *domain.Subcategory) error {
	result, err := s.collection.InsertOne(ctx, subcategory)
	if err != nil {
		return fmt.Errorf("failed to insert subcategory: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		subcategory.ID = oid
	}
	log.Printf("Inserted subcategory with ID: %v", result.InsertedID)
	return nil
}

func (s *MongoSubcategoryStore) GetByID(ctx context.Context, id string) (*domain.Subcategory, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var subcategory domain.Subcategory
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&subcategory)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find subcategory: %w", err)
	}
	return &subcategory, nil
}

func (s *MongoSubcategoryStore) List(ctx context.Context) ([]*domain.Subcategory, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	defer cursor.Close(ctx)

	var subcategories []*domain.Subcategory
	if err = cursor.All(ctx, &subcategories); err != nil {
		return nil, fmt.Errorf("failed to decode subcategories: %w", err)
	}
	if subcategories == nil {
		subcategories = []*domain.Subcategory{}
	}
	return subcategories, nil
}

func (s *MongoSubcategoryStore) Update(ctx context.Context, id string, set bson.M) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update subcategory: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoSubcategoryStore) Delete(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
	}
	return nil
}

// FindSharingTags returns subcategories carrying at least one of the
// given tags.
func (s *MongoSubcategoryStore) FindSharingTags(ctx context.Context, tags []string) ([]*domain.Subcategory, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"tags": bson.M{"$in": tags}})
	if err != nil {
		return nil, fmt.Errorf("failed to find subcategories by tags: %w", err)
	}
	defer cursor.Close(ctx)

	var subcategories []*domain.Subcategory
	if err = cursor.All(ctx, &subcategories); err != nil {
		return nil, fmt.Errorf("failed to decode subcategories: %w", err)
	}
	if subcategories == nil {
		subcategories = []*domain.Subcategory{}
	}
	return subcategories, nil
}

// FindByTag returns subcategories carrying the literal tag.
func (s *MongoSubcategoryStore) FindByTag(ctx context.Context, tag string) ([]*domain.Subcategory, error) {
	return s.FindSharingTags(ctx, []string{tag})
}
