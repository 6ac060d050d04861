package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nikolayk812/agrocart/internal/auth"
	"github.com/nikolayk812/agrocart/internal/batch"
	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrUsage = errors.New("invalid usage")

type Runner struct {
	options    Options
	cfg        config.Config
	session    *auth.Session
	store      *store.Store
	reconciler *batch.Reconciler
	logger     *zap.Logger

	in  io.Reader
	out io.Writer
}

func NewRunner(
	opts Options,
	cfg config.Config,
	session *auth.Session,
	st *store.Store,
	reconciler *batch.Reconciler,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		options:    opts,
		cfg:        cfg,
		session:    session,
		store:      st,
		reconciler: reconciler,
		logger:     logger.Named("cli"),
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// SetIO replaces the standard streams.
func (r *Runner) SetIO(in io.Reader, out io.Writer) {
	r.in, r.out = in, out
}

func (r *Runner) Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}

func (r *Runner) Run(ctx context.Context) error {
	args := r.options.Args

	switch r.options.Command {
	case "show":
		return r.show(ctx)
	case "add":
		return r.add(ctx, args)
	case "add-many":
		return r.addMany(ctx, args)
	case "update":
		return r.update(ctx, args)
	case "remove", "rm":
		return r.remove(ctx, args)
	case "clear":
		return r.clear(ctx)
	case "batch":
		return r.batch(ctx, args)
	case "merge-preview":
		return r.mergePreview(args)
	case "edit":
		return r.edit(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, r.options.Command)
	}
}

func (r *Runner) show(ctx context.Context) error {
	if err := r.store.Load(ctx, r.session.Principal()); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) add(ctx context.Context, args []string) error {
	if len(args) < 5 || len(args) > 6 {
		return fmt.Errorf("%w: add <id> <title> <price> <unit> <qty> [moq]", ErrUsage)
	}

	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("%w: price %q: %v", ErrUsage, args[2], err)
	}
	quantity, err := atoi("qty", args[4])
	if err != nil {
		return err
	}

	item := domain.LineItem{
		ID:       args[0],
		Title:    args[1],
		Price:    price,
		Unit:     args[3],
		Quantity: quantity,
	}
	if len(args) == 6 {
		if item.MinimumOrderQuantity, err = atoi("moq", args[5]); err != nil {
			return err
		}
	}

	p := r.session.Principal()
	if err := r.store.AddOne(ctx, p, item); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) addMany(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: add-many <items.json>", ErrUsage)
	}

	items, err := readJSON[[]domain.LineItem](args[0])
	if err != nil {
		return err
	}

	if err := r.store.AddMany(ctx, r.session.Principal(), items); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) update(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: update <id> <qty>", ErrUsage)
	}
	quantity, err := atoi("qty", args[1])
	if err != nil {
		return err
	}

	p := r.session.Principal()
	// the minimum order quantity check needs the current lines
	if err := r.store.Load(ctx, p); err != nil {
		return err
	}
	if err := r.store.UpdateQuantity(ctx, p, args[0], quantity); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: remove <id>", ErrUsage)
	}

	if err := r.store.Remove(ctx, r.session.Principal(), args[0]); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) clear(ctx context.Context) error {
	if err := r.store.Clear(ctx, r.session.Principal()); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) batch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: batch <operations.json>", ErrUsage)
	}

	ops, err := readJSON[[]domain.Operation](args[0])
	if err != nil {
		return err
	}

	if err := r.store.BatchUpdate(ctx, r.session.Principal(), ops); err != nil {
		return err
	}
	return r.printCart()
}

func (r *Runner) mergePreview(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: merge-preview <existing.json> <incoming.json>", ErrUsage)
	}

	existing, err := readJSON[[]domain.LineItem](args[0])
	if err != nil {
		return err
	}
	incoming, err := readJSON[[]domain.LineItem](args[1])
	if err != nil {
		return err
	}
	if err := cart.ValidateAll(incoming); err != nil {
		return err
	}

	merged := r.store.PreviewMerge(existing, incoming)
	return r.renderer().cart(merged, r.store.PreviewTotals(merged))
}

func (r *Runner) printCart() error {
	state := r.store.State()
	return r.renderer().cart(state.Items, state.Totals)
}

func (r *Runner) renderer() renderer {
	// config.New has already rejected an invalid currency
	unit, _ := r.cfg.CurrencyUnit()
	return renderer{out: r.out, json: r.options.JSON, currency: unit}
}

// Describe returns the text shown to the user for a failed command.
func Describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "not signed in: set PRINCIPAL_EMAIL or pass -email"
	case errors.Is(err, ErrUsage):
		return err.Error()
	default:
		return domain.UserMessage(err)
	}
}

func readJSON[T any](path string) (T, error) {
	var out T

	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("os.ReadFile: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("json.Unmarshal[%s]: %w", path, err)
	}
	return out, nil
}

func atoi(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrUsage, name, value)
	}
	return n, nil
}
