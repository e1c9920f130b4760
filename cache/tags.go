// Package cache implements the two-level cache-tag convention: every entity
// kind has a global tag covering list reads and an id tag covering detail
// reads. Mutations invalidate both so neither view serves stale state.
package cache

import (
	"context"
	"fmt"
	"time"
)

type Kind string

const (
	KindUsers      Kind = "users"
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
	KindCarts      Kind = "carts"
	KindOrders     Kind = "orders"
)

// Expiry hints attached to read-side tags. The registry only records them;
// the surrounding caching layer decides what to do with the window.
const (
	LifeMinutes = 5 * time.Minute
	LifeHours   = time.Hour
	LifeDays    = 24 * time.Hour
)

func GlobalTag(kind Kind) string {
	return fmt.Sprintf("global:%s", kind)
}

func IDTag(kind Kind, id string) string {
	return fmt.Sprintf("id:%s-%s", id, kind)
}

// Sink marks every cached read scoped to a tag as stale.
type Sink interface {
	Invalidate(ctx context.Context, tag string) error
}

// Tags is the invalidation registry handed to services. It is an explicit
// dependency rather than a process-wide global so tests can inject their own
// sink.
type Tags struct {
	sink Sink
}

func New(sink Sink) *Tags {
	return &Tags{sink: sink}
}

// Invalidate touches the global tag for kind and, when id is non-empty, the
// id tag as well.
func (t *Tags) Invalidate(ctx context.Context, kind Kind, id string) error {
	if t == nil || t.sink == nil {
		return nil
	}
	if err := t.sink.Invalidate(ctx, GlobalTag(kind)); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return t.sink.Invalidate(ctx, IDTag(kind, id))
}
