// Package batch stages quantity changes and removals against a loaded cart and
// sends them to the backend as one batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/domain"
	"go.uber.org/zap"
)

var ErrCommitInProgress = errors.New("commit already in progress")

type Status string

const (
	StatusClean  Status = "clean"
	StatusDirty  Status = "dirty"
	StatusSaving Status = "saving"
)

type PendingEdit struct {
	Type             domain.OperationType
	Quantity         int
	OriginalQuantity int
}

// Committer is the part of the cart store the reconciler depends on.
type Committer interface {
	Items() []domain.LineItem
	BatchUpdate(ctx context.Context, p domain.Principal, ops []domain.Operation) error
	OnChange(fn func(domain.CartState))
}

type Reconciler struct {
	store  Committer
	logger *zap.Logger

	mu       sync.Mutex
	baseline []domain.LineItem
	shadow   []domain.LineItem
	pending  map[string]PendingEdit
	saving   bool
	// deferred holds items the store published while a commit was running.
	deferred []domain.LineItem
}

// New baselines from the store's current items and re-baselines on every
// authoritative change of the store.
func New(store Committer, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reconciler{
		store:   store,
		logger:  logger.Named("batch"),
		pending: make(map[string]PendingEdit),
	}
	r.InitFromBaseline(store.Items())
	store.OnChange(r.storeChanged)

	return r
}

func (r *Reconciler) InitFromBaseline(items []domain.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reset(items)
}

func (r *Reconciler) storeChanged(state domain.CartState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving {
		r.deferred = domain.CloneItems(state.Items)
		if r.deferred == nil {
			r.deferred = []domain.LineItem{}
		}
		return
	}
	r.reset(state.Items)
}

// StageQuantityChange reports false and changes nothing when the item is not in
// the cart, the quantity is below its minimum order quantity, or a commit is running.
func (r *Reconciler) StageQuantityChange(itemID string, quantity int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving {
		return false
	}

	idx := indexOf(r.shadow, itemID)
	if idx < 0 {
		return false
	}
	if quantity < r.shadow[idx].EffectiveMinimum() {
		r.logger.Debug("quantity change refused",
			zap.String("item_id", itemID),
			zap.Int("quantity", quantity),
			zap.Int("minimum", r.shadow[idx].EffectiveMinimum()),
		)
		return false
	}

	r.shadow[idx].Quantity = quantity

	original := r.baselineQuantity(itemID)
	if quantity == original {
		delete(r.pending, itemID)
		return true
	}

	r.pending[itemID] = PendingEdit{
		Type:             domain.OpUpdate,
		Quantity:         quantity,
		OriginalQuantity: original,
	}
	return true
}

func (r *Reconciler) StageRemoval(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving {
		return false
	}

	idx := indexOf(r.shadow, itemID)
	if idx < 0 {
		return false
	}

	r.shadow = append(r.shadow[:idx], r.shadow[idx+1:]...)
	r.pending[itemID] = PendingEdit{
		Type:             domain.OpRemove,
		OriginalQuantity: r.baselineQuantity(itemID),
	}
	return true
}

// Operations lists the pending edits in baseline order.
func (r *Reconciler) Operations() []domain.Operation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.operations()
}

// Commit sends the pending edits in one batch. On failure the edits and the
// shadow copy are kept so the caller can retry.
func (r *Reconciler) Commit(ctx context.Context, p domain.Principal) error {
	r.mu.Lock()
	if r.saving {
		r.mu.Unlock()
		return ErrCommitInProgress
	}
	ops := r.operations()
	if len(ops) == 0 {
		r.mu.Unlock()
		return nil
	}
	r.saving = true
	r.mu.Unlock()

	r.logger.Info("committing cart edits", zap.Int("operations", len(ops)))

	err := r.store.BatchUpdate(ctx, p, ops)
	if err != nil {
		r.mu.Lock()
		r.saving = false
		if r.deferred != nil {
			r.rebase(r.deferred)
		}
		r.mu.Unlock()

		r.logger.Warn("cart edits not saved", zap.Int("operations", len(ops)), zap.Error(err))
		return fmt.Errorf("store.BatchUpdate: %w", err)
	}

	items := r.store.Items()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.saving = false
	r.reset(items)
	return nil
}

func (r *Reconciler) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shadow = domain.CloneItems(r.baseline)
	clear(r.pending)
}

func (r *Reconciler) Shadow() []domain.LineItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	return domain.CloneItems(r.shadow)
}

// Totals previews the cart totals after the pending edits are committed.
func (r *Reconciler) Totals() domain.Totals {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cart.ComputeTotals(r.shadow)
}

func (r *Reconciler) Pending() map[string]PendingEdit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]PendingEdit, len(r.pending))
	for k, v := range r.pending {
		out[k] = v
	}
	return out
}

func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pending)
}

func (r *Reconciler) Dirty(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.pending[itemID]
	return ok
}

func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.saving:
		return StatusSaving
	case len(r.pending) > 0:
		return StatusDirty
	default:
		return StatusClean
	}
}

// reset must be called with mu held.
func (r *Reconciler) reset(items []domain.LineItem) {
	r.baseline = domain.CloneItems(items)
	r.shadow = domain.CloneItems(items)
	r.deferred = nil
	clear(r.pending)
}

// rebase moves the pending edits onto a new baseline. Edits for items that are
// gone, and updates that now match the baseline or fall below the minimum, are
// dropped. Must be called with mu held.
func (r *Reconciler) rebase(items []domain.LineItem) {
	edits := make(map[string]PendingEdit, len(r.pending))
	for id, edit := range r.pending {
		edits[id] = edit
	}
	r.reset(items)

	for _, item := range items {
		edit, ok := edits[item.ID]
		if !ok {
			continue
		}

		idx := indexOf(r.shadow, item.ID)
		switch edit.Type {
		case domain.OpRemove:
			r.shadow = append(r.shadow[:idx], r.shadow[idx+1:]...)
			r.pending[item.ID] = PendingEdit{Type: domain.OpRemove, OriginalQuantity: item.Quantity}
		case domain.OpUpdate:
			if edit.Quantity == item.Quantity || edit.Quantity < item.EffectiveMinimum() {
				continue
			}
			r.shadow[idx].Quantity = edit.Quantity
			r.pending[item.ID] = PendingEdit{Type: domain.OpUpdate, Quantity: edit.Quantity, OriginalQuantity: item.Quantity}
		}
	}

	if len(edits) != len(r.pending) {
		r.logger.Info("pending cart edits rebased",
			zap.Int("kept", len(r.pending)),
			zap.Int("dropped", len(edits)-len(r.pending)),
		)
	}
}

func (r *Reconciler) operations() []domain.Operation {
	ops := make([]domain.Operation, 0, len(r.pending))
	for _, item := range r.baseline {
		edit, ok := r.pending[item.ID]
		if !ok {
			continue
		}

		op := domain.Operation{ItemID: item.ID, Type: edit.Type}
		if edit.Type == domain.OpUpdate {
			op.Quantity = edit.Quantity
		}
		ops = append(ops, op)
	}
	return ops
}

func (r *Reconciler) baselineQuantity(itemID string) int {
	if idx := indexOf(r.baseline, itemID); idx >= 0 {
		return r.baseline[idx].Quantity
	}
	return 0
}

func indexOf(items []domain.LineItem, itemID string) int {
	for idx, item := range items {
		if item.ID == itemID {
			return idx
		}
	}
	return -1
}
