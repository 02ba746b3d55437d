package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	lookupConcurrency     = 8
	defaultPublishTimeout = 2 * time.Second
)

type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	cache    cache.CartCache
	events   events.Publisher
	log      *zap.Logger
	sfg      singleflight.Group // collapses concurrent cache misses per user

	publishTimeout time.Duration
}

func NewCartService(
	users repository.UserRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	cartCache cache.CartCache,
	publisher events.Publisher,
	log *zap.Logger,
) *CartService {
	return &CartService{
		users:    users,
		products: products,
		carts:    carts,
		cache:    cartCache,
		events:   publisher,
		log:      log,

		publishTimeout: defaultPublishTimeout,
	}
}

// AddResult is the cart after an add plus the requested ids that did not
// resolve to a product.
type AddResult struct {
	Cart    *domain.Cart
	Skipped []string
}

// AddToCart merges the given products into the user's cart, creating the cart
// on first use. Unknown product ids are skipped and reported in the result.
func (s *CartService) AddToCart(ctx context.Context, email string, productIDs []string) (*AddResult, error) {
	ids := distinctIDs(productIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyProductList
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("load user", err)
	}

	resolved, err := s.resolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, user)
	created := false
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		cart = &domain.Cart{Products: []string{}}
		created = true
	case err != nil:
		return nil, err
	}

	skipped := []string{}
	added := 0
	for i, p := range resolved {
		if p == nil {
			skipped = append(skipped, ids[i])
			continue
		}
		if cart.AddProduct(ids[i], p.Price) {
			added++
		}
	}
	if len(skipped) > 0 {
		s.log.Warn("skipped unknown products",
			zap.String("user", email),
			zap.Strings("product_ids", skipped))
	}

	switch {
	case created:
		if err := s.carts.Create(ctx, cart); err != nil {
			return nil, storeErr("create cart", err)
		}
		if err := s.users.SetCart(ctx, user.ID, cart.ID); err != nil {
			s.discardCart(cart.ID)
			return nil, storeErr("attach cart", err)
		}
	case added > 0:
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, storeErr("save cart", err)
		}
	default:
		return &AddResult{Cart: cart, Skipped: skipped}, nil
	}

	s.invalidate(email)
	s.publish(ctx, events.CartEvent{
		Type:      events.CartItemsAdded,
		UserEmail: email,
		CartID:    cart.ID,
		Products:  cart.Products,
		Total:     cart.Total,
		Skipped:   skipped,
	})

	return &AddResult{Cart: cart, Skipped: skipped}, nil
}

// RemoveFromCart drops one product from the cart and recomputes the total from
// the current prices of what remains. Entries whose product no longer exists
// are pruned.
func (s *CartService) RemoveFromCart(ctx context.Context, email, productID string) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrMissingProductID
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("load user", err)
	}

	cart, err := s.loadCart(ctx, user)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveProduct(productID) {
		return nil, ErrProductNotInCart
	}

	resolved, err := s.resolveProducts(ctx, cart.Products)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(resolved))
	prices := make([]float64, 0, len(resolved))
	for i, p := range resolved {
		if p == nil {
			s.log.Warn("pruned missing product from cart",
				zap.String("cart_id", cart.ID),
				zap.String("product_id", cart.Products[i]))
			continue
		}
		remaining = append(remaining, cart.Products[i])
		prices = append(prices, p.Price)
	}
	cart.Products = remaining
	cart.Total = domain.SumPrices(prices...)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, storeErr("save cart", err)
	}

	s.invalidate(email)
	s.publish(ctx, events.CartEvent{
		Type:      events.CartItemRemoved,
		UserEmail: email,
		CartID:    cart.ID,
		Products:  cart.Products,
		Total:     cart.Total,
	})

	return cart, nil
}

// GetCart returns the cart with products expanded. A user without a cart gets
// an empty view. Only the cart document is cached; product records are looked
// up on every read.
func (s *CartService) GetCart(ctx context.Context, email string) (*domain.CartView, error) {
	v, err, _ := s.sfg.Do(email, func() (interface{}, error) {
		cart, err := s.cachedCart(ctx, email)
		if err != nil {
			return nil, err
		}
		return s.expand(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.CartView), nil
}

// cachedCart reads the user's cart through the cache. A user without a cart
// is cached as a cart with no id.
func (s *CartService) cachedCart(ctx context.Context, email string) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, email)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache get failed", zap.String("user", email), zap.Error(err))
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("load user", err)
	}

	cart, err = s.loadCart(ctx, user)
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		cart = &domain.Cart{Products: []string{}}
	case err != nil:
		return nil, err
	}

	if err := s.cache.Set(ctx, email, cart); err != nil {
		s.log.Warn("cache set failed", zap.String("user", email), zap.Error(err))
	}
	return cart, nil
}

func (s *CartService) expand(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	if cart.ID == "" {
		return domain.EmptyCartView(), nil
	}

	resolved, err := s.resolveProducts(ctx, cart.Products)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resolved))
	for _, p := range resolved {
		if p != nil {
			products = append(products, *p)
		}
	}

	return &domain.CartView{ID: cart.ID, Products: products, Total: cart.Total}, nil
}

// loadCart returns repository.ErrCartNotFound both when the user has no cart
// and when the referenced cart document is gone.
func (s *CartService) loadCart(ctx context.Context, user *domain.User) (*domain.Cart, error) {
	if !user.HasCart() {
		return nil, repository.ErrCartNotFound
	}

	cart, err := s.carts.GetByID(ctx, user.CartID)
	if errors.Is(err, repository.ErrCartNotFound) {
		s.log.Warn("user references missing cart",
			zap.String("user_id", user.ID),
			zap.String("cart_id", user.CartID))
		return nil, err
	}
	if err != nil {
		return nil, storeErr("load cart", err)
	}
	return cart, nil
}

// resolveProducts looks up ids concurrently. The result is aligned with ids;
// entries for products that do not exist are nil.
func (s *CartService) resolveProducts(ctx context.Context, ids []string) ([]*domain.Product, error) {
	resolved := make([]*domain.Product, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.products.GetByID(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return storeErr(fmt.Sprintf("lookup product %s", id), err)
			}
			resolved[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resolved, nil
}

func (s *CartService) invalidate(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, email); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("user", email), zap.Error(err))
	}
}

// discardCart removes a cart that could not be attached to its user.
func (s *CartService) discardCart(cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.log.Warn("orphaned cart left behind", zap.String("cart_id", cartID), zap.Error(err))
	}
}

// publish is best effort. It gets its own deadline so a stalled broker cannot
// hold the request for its whole timeout.
func (s *CartService) publish(ctx context.Context, event events.CartEvent) {
	event.OccurredAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish cart event failed",
			zap.String("type", event.Type),
			zap.String("cart_id", event.CartID),
			zap.Error(err))
	}
}

// distinctIDs trims ids, drops blanks and keeps the first occurrence of each.
func distinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
