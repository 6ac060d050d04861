package batch_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/agrocart/internal/batch"
	"github.com/nikolayk812/agrocart/internal/cartfake"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	backend    *cartfake.Backend
	store      *store.Store
	reconciler *batch.Reconciler
	principal  domain.Principal
}

func newFixture(t *testing.T, items ...domain.LineItem) *fixture {
	t.Helper()

	f := &fixture{
		backend:   cartfake.New(),
		principal: domain.Principal{ID: gofakeit.UUID(), Email: gofakeit.Email()},
	}
	f.backend.Seed(f.principal.Email, items)

	logger := zaptest.NewLogger(t)
	f.store = store.New(f.backend, nil, nil, logger)
	f.reconciler = batch.New(f.store, logger)

	require.NoError(t, f.store.Load(t.Context(), f.principal))
	return f
}

func TestReconciler_BaselinesFromStore(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 2, 0), lineItem("B", 5, 1, 0))

	assert.Len(t, f.reconciler.Shadow(), 2)
	assert.Equal(t, batch.StatusClean, f.reconciler.Status())
	assert.Equal(t, 0, f.reconciler.PendingCount())
}

func TestReconciler_StageQuantityChange(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int
		wantStaged  bool
		wantPending int
		wantQty     int
	}{
		{name: "new quantity: staged", quantity: 6, wantStaged: true, wantPending: 1, wantQty: 6},
		{name: "same as baseline: pruned", quantity: 4, wantStaged: true, wantPending: 0, wantQty: 4},
		{name: "below minimum: refused", quantity: 2, wantStaged: false, wantPending: 0, wantQty: 4},
		{name: "zero: refused", quantity: 0, wantStaged: false, wantPending: 0, wantQty: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, lineItem("X", 10, 4, 3))

			staged := f.reconciler.StageQuantityChange("X", tt.quantity)

			assert.Equal(t, tt.wantStaged, staged)
			assert.Equal(t, tt.wantPending, f.reconciler.PendingCount())
			shadow := f.reconciler.Shadow()
			require.Len(t, shadow, 1)
			assert.Equal(t, tt.wantQty, shadow[0].Quantity)
		})
	}
}

func TestReconciler_EditBackToOriginalIsPruned(t *testing.T) {
	f := newFixture(t, lineItem("X", 10, 4, 0))

	require.True(t, f.reconciler.StageQuantityChange("X", 9))
	require.True(t, f.reconciler.Dirty("X"))
	assert.Equal(t, batch.PendingEdit{Type: domain.OpUpdate, Quantity: 9, OriginalQuantity: 4}, f.reconciler.Pending()["X"])

	require.True(t, f.reconciler.StageQuantityChange("X", 4))

	assert.False(t, f.reconciler.Dirty("X"))
	assert.Equal(t, batch.StatusClean, f.reconciler.Status())
}

func TestReconciler_UnknownItem(t *testing.T) {
	f := newFixture(t, lineItem("X", 10, 4, 0))

	assert.False(t, f.reconciler.StageQuantityChange("nope", 3))
	assert.False(t, f.reconciler.StageRemoval("nope"))
	assert.Equal(t, 0, f.reconciler.PendingCount())
}

func TestReconciler_StageRemovalOverwritesUpdate(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0), lineItem("B", 5, 2, 0))

	require.True(t, f.reconciler.StageQuantityChange("A", 3))
	require.True(t, f.reconciler.StageRemoval("A"))

	assert.Equal(t, batch.PendingEdit{Type: domain.OpRemove, OriginalQuantity: 1}, f.reconciler.Pending()["A"])
	assert.False(t, f.reconciler.StageQuantityChange("A", 5))
	require.Len(t, f.reconciler.Shadow(), 1)

	totals := f.reconciler.Totals()
	assert.True(t, decimal.NewFromInt(10).Equal(totals.Subtotal))
	assert.True(t, decimal.NewFromInt(100).Equal(totals.DeliveryCharge))
}

func TestReconciler_OperationsFollowBaselineOrder(t *testing.T) {
	f := newFixture(t, lineItem("A", 1, 1, 0), lineItem("B", 1, 1, 0), lineItem("C", 1, 1, 0))

	require.True(t, f.reconciler.StageRemoval("C"))
	require.True(t, f.reconciler.StageQuantityChange("A", 5))

	want := []domain.Operation{
		{ItemID: "A", Type: domain.OpUpdate, Quantity: 5},
		{ItemID: "C", Type: domain.OpRemove},
	}
	assert.Equal(t, want, f.reconciler.Operations())
}

func TestReconciler_Commit(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0), lineItem("B", 5, 2, 0))

	require.True(t, f.reconciler.StageQuantityChange("A", 3))
	require.True(t, f.reconciler.StageRemoval("B"))
	preview := f.reconciler.Totals()

	require.NoError(t, f.reconciler.Commit(t.Context(), f.principal))

	assert.Equal(t, batch.StatusClean, f.reconciler.Status())
	assert.Equal(t, domain.SyncSynced, f.store.SyncStatus())
	assert.True(t, preview.Equal(f.store.Totals()))
	assert.Empty(t, cmp.Diff(f.store.Items(), f.reconciler.Shadow(), decimalComparer))
}

func TestReconciler_CommitWithoutEditsSendsNothing(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0))
	calls := f.backend.Calls()

	require.NoError(t, f.reconciler.Commit(t.Context(), f.principal))

	assert.Equal(t, calls, f.backend.Calls())
}

func TestReconciler_CommitFailureKeepsEdits(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0))
	require.True(t, f.reconciler.StageQuantityChange("A", 8))
	shadow := f.reconciler.Shadow()

	f.backend.FailNext(&domain.RemoteError{StatusCode: 503, Message: "try later"})
	err := f.reconciler.Commit(t.Context(), f.principal)

	var remoteErr *domain.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, batch.StatusDirty, f.reconciler.Status())
	assert.Equal(t, 1, f.reconciler.PendingCount())
	assert.Empty(t, cmp.Diff(shadow, f.reconciler.Shadow(), decimalComparer))
	assert.Equal(t, domain.SyncError, f.store.SyncStatus())

	require.NoError(t, f.reconciler.Commit(t.Context(), f.principal))
	assert.Equal(t, 8, f.store.Items()[0].Quantity)
}

func TestReconciler_CommitRequiresPrincipal(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0))
	require.True(t, f.reconciler.StageRemoval("A"))
	calls := f.backend.Calls()

	err := f.reconciler.Commit(t.Context(), domain.Principal{})

	require.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Equal(t, calls, f.backend.Calls())
	assert.Equal(t, 1, f.reconciler.PendingCount())
}

func TestReconciler_Discard(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0), lineItem("B", 5, 2, 0))
	baseline := f.reconciler.Shadow()

	require.True(t, f.reconciler.StageQuantityChange("A", 7))
	require.True(t, f.reconciler.StageRemoval("B"))
	f.reconciler.Discard()

	assert.Equal(t, batch.StatusClean, f.reconciler.Status())
	assert.Empty(t, cmp.Diff(baseline, f.reconciler.Shadow(), decimalComparer))
	assert.Equal(t, 1, f.backend.Calls())
}

func TestReconciler_RebaselinesOnStoreChange(t *testing.T) {
	f := newFixture(t, lineItem("A", 10, 1, 0))
	require.True(t, f.reconciler.StageQuantityChange("A", 2))

	require.NoError(t, f.store.AddOne(t.Context(), f.principal, lineItem("B", 3, 1, 0)))

	assert.Equal(t, 0, f.reconciler.PendingCount())
	assert.Len(t, f.reconciler.Shadow(), 2)
}

// racingCommitter publishes a store change while the batch is in flight and
// then fails the batch.
type racingCommitter struct {
	items    []domain.LineItem
	onChange func(domain.CartState)
	changed  []domain.LineItem
	err      error
}

func (c *racingCommitter) Items() []domain.LineItem { return domain.CloneItems(c.items) }

func (c *racingCommitter) OnChange(fn func(domain.CartState)) { c.onChange = fn }

func (c *racingCommitter) BatchUpdate(context.Context, domain.Principal, []domain.Operation) error {
	c.items = c.changed
	c.onChange(domain.CartState{Items: domain.CloneItems(c.changed)})
	return c.err
}

func TestReconciler_StoreChangeDuringFailedCommitKeepsEdits(t *testing.T) {
	committer := &racingCommitter{
		items: []domain.LineItem{lineItem("A", 10, 1, 0), lineItem("B", 5, 2, 0), lineItem("C", 3, 1, 0)},
		changed: []domain.LineItem{
			lineItem("A", 10, 1, 0),
			lineItem("B", 5, 2, 0),
			lineItem("C", 3, 1, 0),
			lineItem("D", 7, 1, 0),
		},
		err: &domain.RemoteError{StatusCode: 503},
	}
	r := batch.New(committer, zaptest.NewLogger(t))
	principal := domain.Principal{Email: gofakeit.Email()}

	require.True(t, r.StageQuantityChange("A", 4))
	require.True(t, r.StageRemoval("B"))

	require.Error(t, r.Commit(t.Context(), principal))

	assert.Equal(t, batch.StatusDirty, r.Status())
	assert.Equal(t, map[string]batch.PendingEdit{
		"A": {Type: domain.OpUpdate, Quantity: 4, OriginalQuantity: 1},
		"B": {Type: domain.OpRemove, OriginalQuantity: 2},
	}, r.Pending())

	shadow := r.Shadow()
	require.Len(t, shadow, 3)
	assert.Equal(t, "A", shadow[0].ID)
	assert.Equal(t, 4, shadow[0].Quantity)
	assert.Equal(t, "D", shadow[2].ID)
}

func TestReconciler_StoreChangeDuringSuccessfulCommitRebaselines(t *testing.T) {
	committer := &racingCommitter{
		items:   []domain.LineItem{lineItem("A", 10, 1, 0)},
		changed: []domain.LineItem{lineItem("A", 10, 4, 0), lineItem("D", 7, 1, 0)},
	}
	r := batch.New(committer, zaptest.NewLogger(t))

	require.True(t, r.StageQuantityChange("A", 4))
	require.NoError(t, r.Commit(t.Context(), domain.Principal{Email: gofakeit.Email()}))

	assert.Equal(t, batch.StatusClean, r.Status())
	assert.Len(t, r.Shadow(), 2)
}

var decimalComparer = cmp.Comparer(func(x, y decimal.Decimal) bool {
	return x.Equal(y)
})

func lineItem(id string, price int64, quantity, minimum int) domain.LineItem {
	return domain.LineItem{
		ID:                   id,
		Title:                "Produce " + id,
		Price:                decimal.NewFromInt(price),
		Unit:                 "kg",
		Quantity:             quantity,
		MinimumOrderQuantity: minimum,
	}
}
