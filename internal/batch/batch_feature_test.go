package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cucumber/godog"
	"github.com/nikolayk812/agrocart/internal/batch"
	"github.com/nikolayk812/agrocart/internal/cartfake"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type batchTestContext struct {
	backend    *cartfake.Backend
	store      *store.Store
	reconciler *batch.Reconciler
	principal  domain.Principal
	items      []domain.LineItem
	staged     bool
	err        error
}

func (c *batchTestContext) reset() {
	c.backend = cartfake.New()
	c.store = store.New(c.backend, nil, nil, zap.NewNop())
	c.reconciler = batch.New(c.store, zap.NewNop())
	c.principal = domain.Principal{}
	c.items = nil
	c.staged = false
	c.err = nil
}

func (c *batchTestContext) aSignedInBuyer() error {
	c.principal = domain.Principal{ID: gofakeit.UUID(), Email: gofakeit.Email(), Role: "buyer"}
	return nil
}

func (c *batchTestContext) theCartHoldsItem(id string, price int, unit string, quantity, minimum int) error {
	c.items = append(c.items, domain.LineItem{
		ID:                   id,
		Title:                gofakeit.Vegetable(),
		Price:                decimal.NewFromInt(int64(price)),
		Unit:                 unit,
		Quantity:             quantity,
		MinimumOrderQuantity: minimum,
	})
	c.backend.Seed(c.principal.Email, c.items)
	return c.store.Load(context.Background(), c.principal)
}

func (c *batchTestContext) iStageQuantityForItem(quantity int, id string) error {
	c.staged = c.reconciler.StageQuantityChange(id, quantity)
	return nil
}

func (c *batchTestContext) iStageRemovalOfItem(id string) error {
	c.staged = c.reconciler.StageRemoval(id)
	if !c.staged {
		return fmt.Errorf("removal of %s was refused", id)
	}
	return nil
}

func (c *batchTestContext) iSaveTheChanges() error {
	c.err = c.reconciler.Commit(context.Background(), c.principal)
	return nil
}

func (c *batchTestContext) iDiscardTheChanges() error {
	c.reconciler.Discard()
	return nil
}

func (c *batchTestContext) theBackendFailsTheNextRequestWithStatus(status int) error {
	c.backend.FailNext(&domain.RemoteError{StatusCode: status, Message: "service unavailable"})
	return nil
}

func (c *batchTestContext) theCartTotalsAre(subtotal, delivery, total int) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	return compareTotals(c.store.Totals(), subtotal, delivery, total)
}

func (c *batchTestContext) thePreviewTotalsAre(subtotal, delivery, total int) error {
	return compareTotals(c.reconciler.Totals(), subtotal, delivery, total)
}

func (c *batchTestContext) thereAreUnsavedChanges(n int) error {
	if got := c.reconciler.PendingCount(); got != n {
		return fmt.Errorf("expected %d unsaved changes, got %d", n, got)
	}
	return nil
}

func (c *batchTestContext) theChangeIsRefused() error {
	if c.staged {
		return errors.New("expected the change to be refused")
	}
	return nil
}

func (c *batchTestContext) theSaveFails() error {
	if c.err == nil {
		return errors.New("expected save to fail")
	}
	return nil
}

func (c *batchTestContext) theCartIsSynced() error {
	return c.theCartSyncStatusIs(string(domain.SyncSynced))
}

func (c *batchTestContext) theCartSyncStatusIs(status string) error {
	if got := c.store.SyncStatus(); string(got) != status {
		return fmt.Errorf("expected sync status %q, got %q", status, got)
	}
	return nil
}

func (c *batchTestContext) theBackendReceivedOperations(table *godog.Table) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}

	var want []domain.Operation
	for _, row := range table.Rows[1:] {
		op := domain.Operation{
			ItemID: row.Cells[0].Value,
			Type:   domain.OperationType(row.Cells[1].Value),
		}
		if v := row.Cells[2].Value; v != "" {
			q, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			op.Quantity = q
		}
		want = append(want, op)
	}

	got := c.backend.LastOperations()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("expected operations %v, got %v", want, got)
	}
	return nil
}

func compareTotals(got domain.Totals, subtotal, delivery, total int) error {
	want := domain.Totals{
		TotalItems:     got.TotalItems,
		Subtotal:       decimal.NewFromInt(int64(subtotal)),
		DeliveryCharge: decimal.NewFromInt(int64(delivery)),
		TotalAmount:    decimal.NewFromInt(int64(total)),
	}
	if !want.Equal(got) {
		return fmt.Errorf("expected totals %+v, got %+v", want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &batchTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a signed-in buyer$`, tc.aSignedInBuyer)
	ctx.Step(`^the cart (?:also )?holds item "([^"]*)" priced (\d+) per "([^"]*)" with quantity (\d+) and minimum (\d+)$`, tc.theCartHoldsItem)

	// When steps
	ctx.Step(`^I stage quantity (-?\d+) for item "([^"]*)"$`, tc.iStageQuantityForItem)
	ctx.Step(`^I stage removal of item "([^"]*)"$`, tc.iStageRemovalOfItem)
	ctx.Step(`^I save the changes$`, tc.iSaveTheChanges)
	ctx.Step(`^I discard the changes$`, tc.iDiscardTheChanges)
	ctx.Step(`^the backend fails the next request with status (\d+)$`, tc.theBackendFailsTheNextRequestWithStatus)

	// Then steps
	ctx.Step(`^the cart subtotal is (\d+), delivery charge is (\d+) and total is (\d+)$`, tc.theCartTotalsAre)
	ctx.Step(`^the preview subtotal is (\d+), delivery charge is (\d+) and total is (\d+)$`, tc.thePreviewTotalsAre)
	ctx.Step(`^there are (\d+) unsaved changes$`, tc.thereAreUnsavedChanges)
	ctx.Step(`^the change is refused$`, tc.theChangeIsRefused)
	ctx.Step(`^the save fails$`, tc.theSaveFails)
	ctx.Step(`^the cart is synced$`, tc.theCartIsSynced)
	ctx.Step(`^the cart sync status is "([^"]*)"$`, tc.theCartSyncStatusIs)
	ctx.Step(`^the backend received operations:$`, tc.theBackendReceivedOperations)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
