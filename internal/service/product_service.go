package service

import (
	"context"
	"strings"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"go.uber.org/zap"
)

type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, users repository.UserRepository, log *zap.Logger) *ProductService {
	return &ProductService{products: products, users: users, log: log}
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, ownerEmail string, in domain.ProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationErr("product name is required")
	}
	if err := checkAmounts(&in.Price, &in.Stock); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, storeErr("load owner", err)
	}

	p := domain.NewProduct(owner.ID, in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeErr("create product", err)
	}

	s.log.Info("product created", zap.String("product_id", p.ID), zap.String("owner_id", owner.ID))
	return p, nil
}

// Update applies a partial change. Only the owner or an admin may edit.
func (s *ProductService) Update(ctx context.Context, actorEmail, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationErr("product name cannot be blank")
	}
	if err := checkAmounts(patch.Price, patch.Stock); err != nil {
		return nil, err
	}

	p, err := s.authorize(ctx, actorEmail, id)
	if err != nil {
		return nil, err
	}

	p.ApplyPatch(patch)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, storeErr("update product", err)
	}
	return p, nil
}

// Delete removes the product and returns the deleted record. Carts still
// referencing it are pruned on their next removal.
func (s *ProductService) Delete(ctx context.Context, actorEmail, id string) (*domain.Product, error) {
	if _, err := s.authorize(ctx, actorEmail, id); err != nil {
		return nil, err
	}

	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, storeErr("delete product", err)
	}

	s.log.Info("product deleted", zap.String("product_id", id))
	return deleted, nil
}

func (s *ProductService) authorize(ctx context.Context, actorEmail, id string) (*domain.Product, error) {
	actor, err := s.users.GetByEmail(ctx, actorEmail)
	if err != nil {
		return nil, storeErr("load user", err)
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}

	if !p.CanBeModifiedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func checkAmounts(price *float64, stock *int) error {
	if price != nil && *price < 0 {
		return validationErr("price must not be negative")
	}
	if stock != nil && *stock < 0 {
		return validationErr("stock must not be negative")
	}
	return nil
}
