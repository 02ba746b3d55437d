package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
)

// CartCache stores cart documents (ids and total) keyed by user email.
// Product records are never cached here so reads always see current prices.
type CartCache interface {
	Get(ctx context.Context, email string) (*domain.Cart, error)
	Set(ctx context.Context, email string, cart *domain.Cart) error
	Delete(ctx context.Context, email string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when no Redis is configured; every read misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, *domain.Cart) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
