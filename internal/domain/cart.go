package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is an ordered set of product ids plus the total of their prices as of
// the last mutation.
type Cart struct {
	ID        string    `bson:"_id" json:"id"`
	Products  []string  `bson:"products" json:"products"`
	Total     float64   `bson:"total" json:"total"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CartView is a cart with product ids expanded to full records.
type CartView struct {
	ID       string    `json:"id,omitempty"`
	Products []Product `json:"products"`
	Total    float64   `json:"total"`
}

func EmptyCartView() *CartView {
	return &CartView{Products: []Product{}}
}

func (c *Cart) Contains(productID string) bool {
	return slices.Contains(c.Products, productID)
}

// AddProduct appends productID and adds price to the running total. It
// returns false and leaves the cart untouched when the id is already present.
func (c *Cart) AddProduct(productID string, price float64) bool {
	if c.Contains(productID) {
		return false
	}
	c.Products = append(c.Products, productID)
	c.Total = decimal.NewFromFloat(c.Total).Add(decimal.NewFromFloat(price)).InexactFloat64()
	return true
}

// RemoveProduct drops the first entry equal to productID.
func (c *Cart) RemoveProduct(productID string) bool {
	i := slices.Index(c.Products, productID)
	if i < 0 {
		return false
	}
	c.Products = slices.Delete(c.Products, i, i+1)
	return true
}

// SumPrices adds prices with decimal arithmetic so that totals do not drift.
func SumPrices(prices ...float64) float64 {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(decimal.NewFromFloat(p))
	}
	return sum.InexactFloat64()
}
