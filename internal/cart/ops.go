package cart

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/agrocart/internal/domain"
)

var ErrUnknownOperation = errors.New("unknown type")

// SetQuantity returns items with the quantity of itemID replaced. A quantity of
// zero or less removes the line; a quantity below the line's minimum order
// quantity is raised to it. Unknown ids leave the list unchanged.
func SetQuantity(items []domain.LineItem, itemID string, quantity int) []domain.LineItem {
	if quantity <= 0 {
		return RemoveItem(items, itemID)
	}

	out := domain.CloneItems(items)
	for idx := range out {
		if out[idx].ID == itemID {
			out[idx].Quantity = max(quantity, out[idx].EffectiveMinimum())
			break
		}
	}
	return out
}

// RemoveItem is idempotent.
func RemoveItem(items []domain.LineItem, itemID string) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != itemID {
			out = append(out, item.Clone())
		}
	}
	return out
}

// ApplyOperations applies ops in order, so the last operation for an id wins.
func ApplyOperations(items []domain.LineItem, ops []domain.Operation) ([]domain.LineItem, error) {
	out := domain.CloneItems(items)
	for idx, op := range ops {
		switch op.Type {
		case domain.OpUpdate:
			out = SetQuantity(out, op.ItemID, op.Quantity)
		case domain.OpRemove:
			out = RemoveItem(out, op.ItemID)
		default:
			return nil, fmt.Errorf("operations[%d]: %w %q", idx, ErrUnknownOperation, op.Type)
		}
	}
	if out == nil {
		out = []domain.LineItem{}
	}
	return out, nil
}
