package cart_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetQuantity(t *testing.T) {
	base := []domain.LineItem{item("A", 10, 4, 2), item("B", 5, 1, 0)}

	tests := []struct {
		name     string
		itemID   string
		quantity int
		want     []domain.LineItem
	}{
		{
			name:     "update quantity",
			itemID:   "A",
			quantity: 9,
			want:     []domain.LineItem{item("A", 10, 9, 2), item("B", 5, 1, 0)},
		},
		{
			name:     "below minimum clamps",
			itemID:   "A",
			quantity: 1,
			want:     []domain.LineItem{item("A", 10, 2, 2), item("B", 5, 1, 0)},
		},
		{
			name:     "zero removes",
			itemID:   "A",
			quantity: 0,
			want:     []domain.LineItem{item("B", 5, 1, 0)},
		},
		{
			name:     "unknown id is a no-op",
			itemID:   "X",
			quantity: 3,
			want:     base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cart.SetQuantity(base, tt.itemID, tt.quantity)
			assert.Empty(t, cmp.Diff(tt.want, got, decimalComparer))
		})
	}

	assert.Equal(t, 4, base[0].Quantity)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	items := []domain.LineItem{item("A", 10, 1, 0)}

	once := cart.RemoveItem(items, "A")
	twice := cart.RemoveItem(once, "A")

	assert.Empty(t, once)
	assert.Empty(t, cmp.Diff(once, twice, decimalComparer))
}

func TestApplyOperations(t *testing.T) {
	items := []domain.LineItem{item("A", 10, 1, 0), item("B", 5, 3, 0), item("C", 2, 2, 0)}

	got, err := cart.ApplyOperations(items, []domain.Operation{
		{ItemID: "A", Type: domain.OpUpdate, Quantity: 4},
		{ItemID: "B", Type: domain.OpRemove},
		{ItemID: "A", Type: domain.OpUpdate, Quantity: 6},
		{ItemID: "Z", Type: domain.OpRemove},
	})
	require.NoError(t, err)

	want := []domain.LineItem{item("A", 10, 6, 0), item("C", 2, 2, 0)}
	assert.Empty(t, cmp.Diff(want, got, decimalComparer))

	_, err = cart.ApplyOperations(items, []domain.Operation{{ItemID: "A", Type: "explode"}})
	require.EqualError(t, err, `operations[0]: unknown type "explode"`)
	require.ErrorIs(t, err, cart.ErrUnknownOperation)
}
