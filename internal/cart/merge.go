package cart

import "github.com/nikolayk812/agrocart/internal/domain"

// Merge folds incoming into existing: quantities accumulate, metadata of the
// incoming item wins, and every resulting line respects its minimum order quantity.
// Inputs are not modified.
func Merge(existing, incoming []domain.LineItem) []domain.LineItem {
	merged := domain.CloneItems(existing)
	if merged == nil {
		merged = make([]domain.LineItem, 0, len(incoming))
	}

	index := make(map[string]int, len(merged)+len(incoming))
	for idx, item := range merged {
		index[item.ID] = idx
	}

	for _, in := range incoming {
		next := in.Clone()

		idx, ok := index[in.ID]
		if !ok {
			next.Quantity = max(in.Quantity, in.EffectiveMinimum())
			index[in.ID] = len(merged)
			merged = append(merged, next)
			continue
		}

		current := merged[idx]
		minimum := max(current.EffectiveMinimum(), in.EffectiveMinimum())
		next.Quantity = max(current.Quantity+in.Quantity, minimum)
		merged[idx] = next
	}

	return merged
}
