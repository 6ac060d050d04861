package cart

import (
	"fmt"
	"math"
	"strings"

	"github.com/nikolayk812/agrocart/internal/domain"
)

// MaxQuantity is the largest quantity or minimum order quantity a line may carry.
const MaxQuantity = math.MaxInt32

func Validate(item *domain.LineItem) error {
	if item == nil {
		return &domain.InvalidItemError{Field: "item", Reason: "is missing"}
	}

	invalid := func(field, reason string) error {
		return &domain.InvalidItemError{ItemID: item.ID, Field: field, Reason: reason}
	}

	switch {
	case strings.TrimSpace(item.ID) == "":
		return invalid("id", "is required")
	case strings.TrimSpace(item.Title) == "":
		return invalid("title", "is required")
	case strings.TrimSpace(item.Unit) == "":
		return invalid("unit", "is required")
	case !item.Price.IsPositive():
		return invalid("price", "must be positive")
	case item.Quantity <= 0:
		return invalid("quantity", "must be positive")
	case item.Quantity > MaxQuantity:
		return invalid("quantity", "is too large")
	case item.MinimumOrderQuantity < 0:
		return invalid("minimumOrderQuantity", "must be positive")
	case item.MinimumOrderQuantity > MaxQuantity:
		return invalid("minimumOrderQuantity", "is too large")
	case item.MinimumOrderQuantity > 0 && item.Quantity < item.MinimumOrderQuantity:
		return invalid("quantity", fmt.Sprintf("must be at least %d", item.MinimumOrderQuantity))
	}

	return nil
}

// ValidateAll checks every item and reports the first failure.
func ValidateAll(items []domain.LineItem) error {
	for idx := range items {
		if err := Validate(&items[idx]); err != nil {
			return fmt.Errorf("items[%d]: %w", idx, err)
		}
	}
	return nil
}
