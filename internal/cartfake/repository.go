package cartfake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/domain"
)

var errEmptyOwner = errors.New("ownerID is empty")

// Repository keeps carts in memory. It follows the same rules as the
// PostgreSQL repository.
type Repository struct {
	mu      sync.Mutex
	carts   map[string][]domain.LineItem
	failing []error
}

func NewRepository() *Repository {
	return &Repository{
		carts: make(map[string][]domain.LineItem),
	}
}

// FailNext makes the next call return err.
func (r *Repository) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failing = append(r.failing, err)
}

func (r *Repository) GetCart(_ context.Context, ownerID string) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := r.mutate(ownerID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		out = domain.CloneItems(items)
		return items, nil
	})
	if out == nil && err == nil {
		out = []domain.LineItem{}
	}
	return out, err
}

func (r *Repository) AddItems(_ context.Context, ownerID string, items []domain.LineItem) error {
	return r.mutate(ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.Merge(existing, items), nil
	})
}

func (r *Repository) UpdateQuantity(_ context.Context, ownerID, itemID string, quantity int) error {
	return r.mutate(ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.SetQuantity(existing, itemID, quantity), nil
	})
}

func (r *Repository) DeleteItem(_ context.Context, ownerID, itemID string) (bool, error) {
	var deleted bool
	err := r.mutate(ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		out := cart.RemoveItem(existing, itemID)
		deleted = len(out) < len(existing)
		return out, nil
	})
	return deleted, err
}

func (r *Repository) ClearCart(_ context.Context, ownerID string) error {
	return r.mutate(ownerID, func([]domain.LineItem) ([]domain.LineItem, error) {
		return nil, nil
	})
}

func (r *Repository) ApplyOperations(_ context.Context, ownerID string, ops []domain.Operation) error {
	return r.mutate(ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.ApplyOperations(existing, ops)
	})
}

func (r *Repository) mutate(ownerID string, fn func([]domain.LineItem) ([]domain.LineItem, error)) error {
	if ownerID == "" {
		return errEmptyOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.failing) > 0 {
		err := r.failing[0]
		r.failing = r.failing[1:]
		return err
	}

	items, err := fn(domain.CloneItems(r.carts[ownerID]))
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Quantity > cart.MaxQuantity || item.MinimumOrderQuantity > cart.MaxQuantity {
			return fmt.Errorf("%w: item %s", domain.ErrQuantityOutOfRange, item.ID)
		}
	}
	r.carts[ownerID] = items
	return nil
}
