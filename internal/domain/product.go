package domain

import "time"

type Product struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	Image       string    `bson:"image" json:"image"`
	Brand       string    `bson:"brand" json:"brand"`
	Stock       int       `bson:"stock" json:"stock"`
	Description string    `bson:"description" json:"description"`
	OwnerID     string    `bson:"user_id" json:"user"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name        string
	Price       float64
	Image       string
	Brand       string
	Stock       int
	Description string
}

// ProductPatch is a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Image       *string
	Brand       *string
	Stock       *int
	Description *string
}

func NewProduct(ownerID string, in ProductInput) *Product {
	return &Product{
		Name:        in.Name,
		Price:       in.Price,
		Image:       in.Image,
		Brand:       in.Brand,
		Stock:       in.Stock,
		Description: in.Description,
		OwnerID:     ownerID,
	}
}

func (p *Product) ApplyPatch(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
}

// CanBeModifiedBy reports whether user may edit or delete the product.
func (p *Product) CanBeModifiedBy(user *User) bool {
	return user.IsAdmin() || p.OwnerID == user.ID
}
