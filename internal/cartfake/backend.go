// Package cartfake is an in-memory cart backend with the same merge and totals
// rules as the HTTP backend. It records calls and can be told to fail.
package cartfake

import (
	"context"
	"sync"

	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/domain"
)

type Backend struct {
	mu      sync.Mutex
	carts   map[string][]domain.LineItem
	calls   int
	failing []error
	lastOps []domain.Operation
}

func New() *Backend {
	return &Backend{
		carts: make(map[string][]domain.LineItem),
	}
}

func (b *Backend) Seed(principal string, items []domain.LineItem) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.carts[principal] = domain.CloneItems(items)
}

// FailNext makes the next call return err without touching the stored cart.
func (b *Backend) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failing = append(b.failing, err)
}

func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.calls
}

func (b *Backend) LastOperations() []domain.Operation {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]domain.Operation(nil), b.lastOps...)
}

func (b *Backend) Items(principal string) []domain.LineItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	return domain.CloneItems(b.carts[principal])
}

func (b *Backend) GetCart(_ context.Context, principal string) (domain.Cart, error) {
	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return items, nil
	})
}

func (b *Backend) AddItem(_ context.Context, principal string, item domain.LineItem) (domain.Cart, error) {
	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return cart.Merge(items, []domain.LineItem{item}), nil
	})
}

func (b *Backend) AddItems(_ context.Context, principal string, incoming []domain.LineItem) (domain.Cart, error) {
	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return cart.Merge(items, incoming), nil
	})
}

func (b *Backend) UpdateQuantity(_ context.Context, principal, itemID string, quantity int) (domain.Cart, error) {
	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return cart.SetQuantity(items, itemID, quantity), nil
	})
}

func (b *Backend) RemoveItem(_ context.Context, principal, itemID string) (domain.Cart, error) {
	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return cart.RemoveItem(items, itemID), nil
	})
}

func (b *Backend) ClearCart(_ context.Context, principal string) (domain.Cart, error) {
	return b.mutate(principal, func([]domain.LineItem) ([]domain.LineItem, error) {
		return []domain.LineItem{}, nil
	})
}

func (b *Backend) BatchUpdate(_ context.Context, principal string, ops []domain.Operation) (domain.Cart, error) {
	b.mu.Lock()
	b.lastOps = append([]domain.Operation(nil), ops...)
	b.mu.Unlock()

	return b.mutate(principal, func(items []domain.LineItem) ([]domain.LineItem, error) {
		return cart.ApplyOperations(items, ops)
	})
}

func (b *Backend) mutate(principal string, fn func([]domain.LineItem) ([]domain.LineItem, error)) (domain.Cart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	if len(b.failing) > 0 {
		err := b.failing[0]
		b.failing = b.failing[1:]
		return domain.Cart{}, err
	}

	items, err := fn(domain.CloneItems(b.carts[principal]))
	if err != nil {
		return domain.Cart{}, err
	}
	b.carts[principal] = items

	out := domain.CloneItems(items)
	if out == nil {
		out = []domain.LineItem{}
	}
	return domain.Cart{Items: out, Totals: cart.ComputeTotals(out)}, nil
}
