package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

const editHelp = `  set <id> <qty>  stage a new quantity
  rm <id>         stage a removal
  diff            list unsaved changes and the new totals
  show            print the edited cart
  save            send unsaved changes in one request
  discard         drop unsaved changes
  exit            leave (asks again when changes are unsaved)
`

// edit stages changes with the batch reconciler until the user saves them.
func (r *Runner) edit(ctx context.Context) error {
	p := r.session.Principal()
	if err := r.store.Load(ctx, p); err != nil {
		return err
	}

	rend := r.renderer()
	if err := rend.cart(r.reconciler.Shadow(), r.reconciler.Totals()); err != nil {
		return err
	}
	fmt.Fprint(r.out, "\nType help for commands.\n")

	scanner := bufio.NewScanner(r.in)
	warnedUnsaved := false

	for {
		fmt.Fprint(r.out, "cart> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd := strings.ToLower(fields[0])
		if cmd != "exit" && cmd != "quit" {
			warnedUnsaved = false
		}

		switch cmd {
		case "help":
			fmt.Fprint(r.out, editHelp)
		case "set":
			if len(fields) != 3 {
				fmt.Fprintln(r.out, "usage: set <id> <qty>")
				continue
			}
			quantity, err := atoi("qty", fields[2])
			if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			if !r.reconciler.StageQuantityChange(fields[1], quantity) {
				fmt.Fprintf(r.out, "%s: not in cart or below its minimum order quantity\n", fields[1])
			}
		case "rm", "remove":
			if len(fields) != 2 {
				fmt.Fprintln(r.out, "usage: rm <id>")
				continue
			}
			if !r.reconciler.StageRemoval(fields[1]) {
				fmt.Fprintf(r.out, "%s: not in cart\n", fields[1])
			}
		case "diff":
			if err := rend.pending(r.reconciler); err != nil {
				return err
			}
		case "show":
			if err := rend.cart(r.reconciler.Shadow(), r.reconciler.Totals()); err != nil {
				return err
			}
		case "save":
			if err := r.reconciler.Commit(ctx, r.session.Principal()); err != nil {
				fmt.Fprintln(r.out, "not saved:", Describe(err))
				continue
			}
			fmt.Fprintln(r.out, "saved.")
			if err := rend.cart(r.reconciler.Shadow(), r.reconciler.Totals()); err != nil {
				return err
			}
		case "discard":
			r.reconciler.Discard()
			fmt.Fprintln(r.out, "changes discarded.")
		case "exit", "quit":
			if n := r.reconciler.PendingCount(); n > 0 && !warnedUnsaved {
				fmt.Fprintf(r.out, "%d unsaved changes; save or discard them, or exit again to leave.\n", n)
				warnedUnsaved = true
				continue
			}
			return nil
		default:
			fmt.Fprintf(r.out, "unknown command %q, type help\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner.Err: %w", err)
	}
	return nil
}
