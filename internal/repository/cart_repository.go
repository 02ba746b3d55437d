package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{
		collection: db.Collection(cartsCollection),
	}
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	now := time.Now().UTC()
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.Products == nil {
		cart.Products = []string{}
	}
	cart.CreatedAt = now
	cart.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, cart); err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Products == nil {
		cart.Products = []string{}
	}
	return &cart, nil
}

// Save replaces the product list and total of an existing cart. Concurrent
// saves for the same cart are last-write-wins.
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	if cart.Products == nil {
		cart.Products = []string{}
	}
	update := bson.M{
		"$set": bson.M{
			"products":   cart.Products,
			"total":      cart.Total,
			"updated_at": cart.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}
