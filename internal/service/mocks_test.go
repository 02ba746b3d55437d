package service

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/google/uuid"
)

var errStore = errors.New("store unavailable")

type mockUserRepository struct {
	m          sync.RWMutex
	users      map[string]*domain.User // by email
	err        error
	setCartErr error
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	r := &mockUserRepository{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrUserExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) SetCart(_ context.Context, userID, cartID string) error {
	m.m.RLock()
	err := m.setCartErr
	m.m.RUnlock()
	if err != nil {
		return err
	}
	return m.update(userID, func(u *domain.User) { u.CartID = cartID })
}

func (m *mockUserRepository) SetToken(_ context.Context, userID, token string) error {
	return m.update(userID, func(u *domain.User) { u.Token = token })
}

func (m *mockUserRepository) update(userID string, fn func(*domain.User)) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.ID == userID {
			fn(u)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) get(email string) *domain.User {
	m.m.RLock()
	defer m.m.RUnlock()
	cp := *m.users[email]
	return &cp
}

type mockProductRepository struct {
	m        sync.RWMutex
	products map[string]*domain.Product
	order    []string
	failing  map[string]error // per-id lookup errors
	err      error
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	r := &mockProductRepository{
		products: map[string]*domain.Product{},
		failing:  map[string]error{},
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (m *mockProductRepository) Create(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	m.products[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *mockProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if err := m.failing[id]; err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) List(context.Context) ([]*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Product, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.products[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockProductRepository) Update(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepository) Delete(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(m.products, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return p, nil
}

func (m *mockProductRepository) setPrice(id string, price float64) {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[id].Price = price
}

func (m *mockProductRepository) remove(id string) {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.products, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
}

func (m *mockProductRepository) failOn(id string, err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.failing[id] = err
}

type mockCartRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
	saves int
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[string]*domain.Cart{}}
}

func (m *mockCartRepository) Create(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	m.carts[cart.ID] = cloneCart(cart)
	return nil
}

func (m *mockCartRepository) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (m *mockCartRepository) Save(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[cart.ID]; !ok {
		return repository.ErrCartNotFound
	}
	m.carts[cart.ID] = cloneCart(cart)
	m.saves++
	return nil
}

func (m *mockCartRepository) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[id]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, id)
	return nil
}

func (m *mockCartRepository) count() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.carts)
}

func (m *mockCartRepository) get(id string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[id]
	if !ok {
		return nil
	}
	return cloneCart(c)
}

func (m *mockCartRepository) put(cart *domain.Cart) {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[cart.ID] = cloneCart(cart)
}

func (m *mockCartRepository) saveCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.saves
}

func cloneCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Products = slices.Clone(c.Products)
	return &cp
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}}
}

func (m *mockCache) Get(_ context.Context, email string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[email]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cloneCart(c), nil
}

func (m *mockCache) Set(_ context.Context, email string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[email] = cloneCart(cart)
	return nil
}

func (m *mockCache) Delete(_ context.Context, email string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, email)
	return m.err
}

func (m *mockCache) has(email string) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[email]
	return ok
}

type recordingPublisher struct {
	m      sync.Mutex
	events []events.CartEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.CartEvent) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.CartEvent {
	p.m.Lock()
	defer p.m.Unlock()
	return slices.Clone(p.events)
}

// blockingPublisher holds every publish until its context is done.
type blockingPublisher struct{}

func (blockingPublisher) Publish(ctx context.Context, _ events.CartEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingPublisher) Close() error { return nil }
