package http

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/service"
)

type fakeCartService struct {
	addResult *service.AddResult
	cart      *domain.Cart
	view      *domain.CartView
	err       error

	gotEmail string
	gotIDs   []string
	gotID    string
}

func (f *fakeCartService) AddToCart(_ context.Context, email string, ids []string) (*service.AddResult, error) {
	f.gotEmail, f.gotIDs = email, ids
	if f.err != nil {
		return nil, f.err
	}
	return f.addResult, nil
}

func (f *fakeCartService) RemoveFromCart(_ context.Context, email, productID string) (*domain.Cart, error) {
	f.gotEmail, f.gotID = email, productID
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

func (f *fakeCartService) GetCart(_ context.Context, email string) (*domain.CartView, error) {
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

type fakeUserService struct {
	user  *domain.User
	login *service.LoginResult
	err   error

	gotRegister service.RegisterInput
}

func (f *fakeUserService) Register(_ context.Context, in service.RegisterInput) (*domain.User, error) {
	f.gotRegister = in
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) Login(context.Context, string, string) (*service.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.login, nil
}

type fakeProductService struct {
	products []*domain.Product
	product  *domain.Product
	err      error

	gotEmail string
	gotID    string
	gotInput domain.ProductInput
	gotPatch domain.ProductPatch
}

func (f *fakeProductService) List(context.Context) ([]*domain.Product, error) {
	return f.products, f.err
}

func (f *fakeProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductService) Create(_ context.Context, email string, in domain.ProductInput) (*domain.Product, error) {
	f.gotEmail, f.gotInput = email, in
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductService) Update(_ context.Context, email, id string, patch domain.ProductPatch) (*domain.Product, error) {
	f.gotEmail, f.gotID, f.gotPatch = email, id, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductService) Delete(_ context.Context, email, id string) (*domain.Product, error) {
	f.gotEmail, f.gotID = email, id
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

// staticTokens accepts tokens of the form "valid:<email>".
type staticTokens struct{}

func (staticTokens) Verify(token string) (string, error) {
	email, ok := strings.CutPrefix(token, "valid:")
	if !ok {
		return "", errors.New("bad token")
	}
	return email, nil
}
