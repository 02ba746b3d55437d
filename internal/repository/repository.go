package repository

import (
	"context"
	"fmt"

	"github.com/fjod/go_shop/internal/domain"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	cartsCollection    = "carts"
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("cart %w", domain.ErrNotFound)
	ErrUserExists      = fmt.Errorf("user %w", domain.ErrConflict)
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetCart(ctx context.Context, userID, cartID string) error
	SetToken(ctx context.Context, userID, token string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) (*domain.Product, error)
}

type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
}
