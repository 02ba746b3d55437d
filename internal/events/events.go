package events

import (
	"context"
	"time"
)

const (
	CartItemsAdded  = "cart.items_added"
	CartItemRemoved = "cart.item_removed"
)

// CartEvent describes a persisted cart mutation.
type CartEvent struct {
	Type       string    `json:"type"`
	UserEmail  string    `json:"user"`
	CartID     string    `json:"cart_id"`
	Products   []string  `json:"products"`
	Total      float64   `json:"total"`
	Skipped    []string  `json:"skipped,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event CartEvent) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CartEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
