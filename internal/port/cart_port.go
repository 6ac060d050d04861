package port

import (
	"context"

	"github.com/nikolayk812/agrocart/internal/domain"
)

// CartBackend is the remote cart service. Every method returns the full,
// authoritative cart after the change.
type CartBackend interface {
	GetCart(ctx context.Context, principal string) (domain.Cart, error)
	AddItem(ctx context.Context, principal string, item domain.LineItem) (domain.Cart, error)
	AddItems(ctx context.Context, principal string, items []domain.LineItem) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, principal, itemID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, principal, itemID string) (domain.Cart, error)
	ClearCart(ctx context.Context, principal string) (domain.Cart, error)
	BatchUpdate(ctx context.Context, principal string, ops []domain.Operation) (domain.Cart, error)
}

// CartRepository persists carts for the reference backend.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) ([]domain.LineItem, error)
	AddItems(ctx context.Context, ownerID string, items []domain.LineItem) error
	UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) error
	DeleteItem(ctx context.Context, ownerID, itemID string) (bool, error)
	ClearCart(ctx context.Context, ownerID string) error
	ApplyOperations(ctx context.Context, ownerID string, ops []domain.Operation) error
}

type SessionInvalidator interface {
	Invalidate(ctx context.Context) error
}

type TokenSource interface {
	Token() string
}

type Notifier interface {
	Notify(notice domain.Notice)
}
