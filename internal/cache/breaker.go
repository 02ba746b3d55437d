package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerCache guards another CartCache with a circuit breaker. Cache misses
// count as successes; only transport failures trip the breaker.
type BreakerCache struct {
	next CartCache
	cb   *gobreaker.CircuitBreaker[*domain.Cart]
}

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func NewBreakerCache(next CartCache, s BreakerSettings) *BreakerCache {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*domain.Cart](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	})

	return &BreakerCache{next: next, cb: cb}
}

func (b *BreakerCache) Get(ctx context.Context, email string) (*domain.Cart, error) {
	return b.cb.Execute(func() (*domain.Cart, error) {
		return b.next.Get(ctx, email)
	})
}

func (b *BreakerCache) Set(ctx context.Context, email string, cart *domain.Cart) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.next.Set(ctx, email, cart)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, email string) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.next.Delete(ctx, email)
	})
	return err
}

func (b *BreakerCache) State() gobreaker.State {
	return b.cb.State()
}
