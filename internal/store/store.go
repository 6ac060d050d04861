package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/zap"
)

// Store holds the client-side copy of one principal's cart. The backend is the
// source of truth: every successful call replaces the items wholesale.
type Store struct {
	backend     port.CartBackend
	invalidator port.SessionInvalidator
	notifier    port.Notifier
	logger      *zap.Logger

	mu        sync.RWMutex
	state     domain.CartState
	inFlight  int
	issued    uint64
	applied   uint64
	listeners []func(domain.CartState)
}

func New(backend port.CartBackend, invalidator port.SessionInvalidator, notifier port.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		backend:     backend,
		invalidator: invalidator,
		notifier:    notifier,
		logger:      logger.Named("store"),
		state: domain.CartState{
			Items:      []domain.LineItem{},
			Totals:     cart.ComputeTotals(nil),
			SyncStatus: domain.SyncIdle,
		},
	}
}

func (s *Store) Load(ctx context.Context, p domain.Principal) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}

	return s.run(ctx, "GetCart", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.GetCart(ctx, p.Email)
	})
}

func (s *Store) AddOne(ctx context.Context, p domain.Principal, item domain.LineItem) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}
	if err := cart.Validate(&item); err != nil {
		return err
	}

	return s.run(ctx, "AddItem", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.AddItem(ctx, p.Email, item)
	})
}

// AddMany sends nothing unless every item is valid. An empty batch is a no-op.
func (s *Store) AddMany(ctx context.Context, p domain.Principal, items []domain.LineItem) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}
	if len(items) == 0 {
		return nil
	}
	if err := cart.ValidateAll(items); err != nil {
		return err
	}

	return s.run(ctx, "AddItems", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.AddItems(ctx, p.Email, items)
	})
}

// UpdateQuantity removes the line for quantity <= 0 and raises a quantity below
// the item's minimum order quantity to that minimum.
func (s *Store) UpdateQuantity(ctx context.Context, p domain.Principal, itemID string, quantity int) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}
	if quantity <= 0 {
		return s.Remove(ctx, p, itemID)
	}

	if item, ok := s.lookup(itemID); ok && quantity < item.EffectiveMinimum() {
		minimum := item.EffectiveMinimum()
		s.logger.Info("quantity raised to minimum order quantity",
			zap.String("item_id", itemID),
			zap.Int("requested", quantity),
			zap.Int("minimum", minimum),
		)
		s.notify(domain.NoticeWarning, fmt.Sprintf("Minimum order quantity for %s is %d %s", item.Title, minimum, item.Unit))
		quantity = minimum
	}

	return s.run(ctx, "UpdateQuantity", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.UpdateQuantity(ctx, p.Email, itemID, quantity)
	})
}

func (s *Store) Remove(ctx context.Context, p domain.Principal, itemID string) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}

	return s.run(ctx, "RemoveItem", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.RemoveItem(ctx, p.Email, itemID)
	})
}

func (s *Store) Clear(ctx context.Context, p domain.Principal) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}

	return s.run(ctx, "ClearCart", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.ClearCart(ctx, p.Email)
	})
}

// BatchUpdate forwards ops in order; for repeated item ids the backend applies the last one.
func (s *Store) BatchUpdate(ctx context.Context, p domain.Principal, ops []domain.Operation) error {
	if !p.Authenticated() {
		return domain.ErrAuthRequired
	}

	return s.run(ctx, "BatchUpdate", func(ctx context.Context) (domain.Cart, error) {
		return s.backend.BatchUpdate(ctx, p.Email, ops)
	})
}

// OnChange registers fn to be called after every wholesale replacement of the items.
func (s *Store) OnChange(fn func(domain.CartState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *Store) State() domain.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.CloneItems(s.state.Items)
}

func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Totals
}

func (s *Store) SyncStatus() domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.SyncStatus
}

// PreviewMerge shows the result of adding incoming to existing without sending anything.
func (s *Store) PreviewMerge(existing, incoming []domain.LineItem) []domain.LineItem {
	return cart.Merge(existing, incoming)
}

func (s *Store) PreviewTotals(items []domain.LineItem) domain.Totals {
	return cart.ComputeTotals(items)
}

func (s *Store) lookup(itemID string) (domain.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.state.Items {
		if item.ID == itemID {
			return item.Clone(), true
		}
	}
	return domain.LineItem{}, false
}

func (s *Store) run(ctx context.Context, op string, call func(ctx context.Context) (domain.Cart, error)) error {
	seq := s.begin()

	s.logger.Debug("cart request", zap.String("op", op), zap.Uint64("seq", seq))

	result, err := call(ctx)
	if err != nil {
		return s.fail(ctx, op, seq, err)
	}

	s.apply(op, seq, result)
	return nil
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.inFlight++
	s.state.Loading = true
	s.state.SyncStatus = domain.SyncSyncing

	return s.issued
}

// settle must be called with mu held.
func (s *Store) settle() {
	s.inFlight--
	s.state.Loading = s.inFlight > 0
}

func (s *Store) apply(op string, seq uint64, result domain.Cart) {
	s.mu.Lock()
	s.settle()

	if seq < s.applied {
		s.mu.Unlock()
		s.logger.Debug("stale cart response dropped",
			zap.String("op", op),
			zap.Uint64("seq", seq),
			zap.Uint64("applied", s.applied),
		)
		return
	}

	items := domain.CloneItems(result.Items)
	if items == nil {
		items = []domain.LineItem{}
	}
	totals := cart.ComputeTotals(items)
	if !totals.Equal(result.Totals) {
		s.logger.Warn("backend totals differ from local computation",
			zap.String("op", op),
			zap.String("backend_total", result.TotalAmount.String()),
			zap.String("local_total", totals.TotalAmount.String()),
		)
	}

	s.applied = seq
	s.state.Items = items
	s.state.Totals = totals
	s.state.Error = ""
	s.state.SyncStatus = domain.SyncSynced

	snapshot := s.state.Clone()
	listeners := append([]func(domain.CartState){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (s *Store) fail(ctx context.Context, op string, seq uint64, err error) error {
	msg := domain.UserMessage(err)

	s.mu.Lock()
	s.settle()
	if seq >= s.applied {
		s.state.SyncStatus = domain.SyncError
		s.state.Error = msg
	}
	s.mu.Unlock()

	s.logger.Error("cart request failed", zap.String("op", op), zap.Uint64("seq", seq), zap.Error(err))
	s.notify(domain.NoticeError, msg)

	var authErr *domain.AuthExpiredError
	if errors.As(err, &authErr) && s.invalidator != nil {
		if invErr := s.invalidator.Invalidate(ctx); invErr != nil {
			s.logger.Error("session invalidation failed", zap.Error(invErr))
		}
	}

	return fmt.Errorf("backend.%s: %w", op, err)
}

func (s *Store) notify(level domain.NoticeLevel, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Notice{Level: level, Message: msg})
}
