package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/db"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q        *db.Queries
	pool     *pgxpool.Pool
	currency currency.Unit
}

func NewCart(pool *pgxpool.Pool, unit currency.Unit) (port.CartRepository, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &cartRepository{
		q:        db.New(pool),
		pool:     pool,
		currency: unit,
	}, nil
}

func NewCartWithTx(tx pgx.Tx, unit currency.Unit) port.CartRepository {
	return &cartRepository{
		q:        db.New(tx),
		pool:     nil, // use provided transaction instead
		currency: unit,
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) ([]domain.LineItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.GetCart: %w", err)
	}

	items, err := mapGetCartRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	return items, nil
}

// AddItems merges items into the stored cart: quantities of lines already in
// the cart are summed and new lines are appended.
func (r *cartRepository) AddItems(ctx context.Context, ownerID string, items []domain.LineItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	return r.mutate(ctx, ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.Merge(existing, items), nil
	})
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	return r.mutate(ctx, ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.SetQuantity(existing, itemID, quantity), nil
	})
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID, itemID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		OwnerID: ownerID,
		ItemID:  itemID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) ClearCart(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.q.ClearCart(ctx, ownerID); err != nil {
		return fmt.Errorf("q.ClearCart: %w", err)
	}

	return nil
}

// ApplyOperations applies ops in order; either all of them are stored or none.
func (r *cartRepository) ApplyOperations(ctx context.Context, ownerID string, ops []domain.Operation) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	return r.mutate(ctx, ownerID, func(existing []domain.LineItem) ([]domain.LineItem, error) {
		return cart.ApplyOperations(existing, ops)
	})
}

// mutate serializes writers of one owner's cart, computes the new cart with fn
// and writes the difference back in the same transaction. Row locks alone would
// not cover lines that do not exist yet.
func (r *cartRepository) mutate(ctx context.Context, ownerID string, fn func([]domain.LineItem) ([]domain.LineItem, error)) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		if err := q.LockOwner(ctx, ownerID); err != nil {
			return struct{}{}, fmt.Errorf("q.LockOwner: %w", err)
		}

		rows, err := q.GetCartForUpdate(ctx, ownerID)
		if err != nil {
			return struct{}{}, fmt.Errorf("q.GetCartForUpdate: %w", err)
		}

		before := make([]db.GetCartRow, 0, len(rows))
		for _, row := range rows {
			before = append(before, db.GetCartRow(row))
		}

		existing, err := mapGetCartRowsToDomain(before)
		if err != nil {
			return struct{}{}, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
		}

		after, err := fn(domain.CloneItems(existing))
		if err != nil {
			return struct{}{}, err
		}

		if err := r.sync(ctx, q, ownerID, existing, after); err != nil {
			return struct{}{}, fmt.Errorf("sync: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

func (r *cartRepository) sync(ctx context.Context, q *db.Queries, ownerID string, before, after []domain.LineItem) error {
	kept := make(map[string]struct{}, len(after))
	for _, item := range after {
		kept[item.ID] = struct{}{}
	}

	for _, item := range before {
		if _, ok := kept[item.ID]; ok {
			continue
		}
		if _, err := q.DeleteItem(ctx, db.DeleteItemParams{OwnerID: ownerID, ItemID: item.ID}); err != nil {
			return fmt.Errorf("q.DeleteItem[%s]: %w", item.ID, err)
		}
	}

	previous := make(map[string]domain.LineItem, len(before))
	for _, item := range before {
		previous[item.ID] = item
	}

	for _, item := range after {
		if old, ok := previous[item.ID]; ok && unchanged(old, item) {
			continue
		}

		params, err := r.mapDomainToUpsertParams(ownerID, item)
		if err != nil {
			return fmt.Errorf("mapDomainToUpsertParams[%s]: %w", item.ID, err)
		}
		if err := q.UpsertItem(ctx, params); err != nil {
			return fmt.Errorf("q.UpsertItem[%s]: %w", item.ID, err)
		}
	}

	return nil
}

func unchanged(a, b domain.LineItem) bool {
	return a.Quantity == b.Quantity &&
		a.MinimumOrderQuantity == b.MinimumOrderQuantity &&
		a.Title == b.Title &&
		a.Unit == b.Unit &&
		a.Price.Equal(b.Price) &&
		maps.EqualFunc(a.Attributes, b.Attributes, func(x, y json.RawMessage) bool {
			return bytes.Equal(x, y)
		})
}

func (r *cartRepository) mapDomainToUpsertParams(ownerID string, item domain.LineItem) (db.UpsertItemParams, error) {
	if item.Quantity <= 0 || item.Quantity > cart.MaxQuantity {
		return db.UpsertItemParams{}, fmt.Errorf("%w: quantity %d", domain.ErrQuantityOutOfRange, item.Quantity)
	}
	if item.MinimumOrderQuantity < 0 || item.MinimumOrderQuantity > cart.MaxQuantity {
		return db.UpsertItemParams{}, fmt.Errorf("%w: minimum order quantity %d", domain.ErrQuantityOutOfRange, item.MinimumOrderQuantity)
	}

	attributes := []byte("{}")
	if len(item.Attributes) > 0 {
		var err error
		attributes, err = json.Marshal(item.Attributes)
		if err != nil {
			return db.UpsertItemParams{}, fmt.Errorf("json.Marshal: %w", err)
		}
	}

	return db.UpsertItemParams{
		OwnerID:          ownerID,
		ItemID:           item.ID,
		Title:            item.Title,
		PriceAmount:      item.Price,
		PriceCurrency:    r.currency.String(),
		Unit:             item.Unit,
		Quantity:         int32(item.Quantity),
		MinOrderQuantity: int32(item.MinimumOrderQuantity),
		Attributes:       attributes,
	}, nil
}

func mapGetCartRowToDomain(row db.GetCartRow) (domain.LineItem, error) {
	if _, err := currency.ParseISO(row.PriceCurrency); err != nil {
		return domain.LineItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	var attributes map[string]json.RawMessage
	if len(row.Attributes) > 0 {
		if err := json.Unmarshal(row.Attributes, &attributes); err != nil {
			return domain.LineItem{}, fmt.Errorf("json.Unmarshal attributes[%s]: %w", row.ItemID, err)
		}
	}
	if len(attributes) == 0 {
		attributes = nil
	}

	return domain.LineItem{
		ID:                   row.ItemID,
		Title:                row.Title,
		Price:                row.PriceAmount,
		Unit:                 row.Unit,
		Quantity:             int(row.Quantity),
		MinimumOrderQuantity: int(row.MinOrderQuantity),
		Attributes:           attributes,
	}, nil
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(rows))

	for _, row := range rows {
		item, err := mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
