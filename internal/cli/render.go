package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/agrocart/internal/batch"
	"github.com/nikolayk812/agrocart/internal/domain"
	"golang.org/x/text/currency"
)

type renderer struct {
	out      io.Writer
	json     bool
	currency currency.Unit
}

func (r renderer) cart(items []domain.LineItem, totals domain.Totals) error {
	if r.json {
		return r.writeJSON(domain.Cart{Items: items, Totals: totals})
	}

	if len(items) == 0 {
		fmt.Fprintln(r.out, "Cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY\tMOQ\tLINE TOTAL")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%d\t%s\t%s\n",
			item.ID,
			item.Title,
			domain.NewMoney(item.Price, r.currency),
			item.Unit,
			item.Quantity,
			moq(item),
			domain.NewMoney(item.LineTotal(), r.currency),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("tw.Flush: %w", err)
	}

	r.totals(totals)
	return nil
}

func (r renderer) totals(totals domain.Totals) {
	fmt.Fprintf(r.out, "\nItems: %d\nSubtotal: %s\nDelivery: %s\nTotal: %s\n",
		totals.TotalItems,
		domain.NewMoney(totals.Subtotal, r.currency),
		domain.NewMoney(totals.DeliveryCharge, r.currency),
		domain.NewMoney(totals.TotalAmount, r.currency),
	)
}

func (r renderer) pending(rec *batch.Reconciler) error {
	ops := rec.Operations()
	if r.json {
		return r.writeJSON(ops)
	}

	if len(ops) == 0 {
		fmt.Fprintln(r.out, "No unsaved changes.")
		return nil
	}

	pending := rec.Pending()
	for _, op := range ops {
		edit := pending[op.ItemID]
		switch op.Type {
		case domain.OpRemove:
			fmt.Fprintf(r.out, "- %s (was %d)\n", op.ItemID, edit.OriginalQuantity)
		default:
			fmt.Fprintf(r.out, "~ %s %d -> %d\n", op.ItemID, edit.OriginalQuantity, op.Quantity)
		}
	}
	r.totals(rec.Totals())
	return nil
}

func (r renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("enc.Encode: %w", err)
	}
	return nil
}

func moq(item domain.LineItem) string {
	if item.MinimumOrderQuantity == 0 {
		return "-"
	}
	return strconv.Itoa(item.MinimumOrderQuantity)
}
