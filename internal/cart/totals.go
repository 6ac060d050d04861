package cart

import (
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/shopspring/decimal"
)

// DeliveryChargePerItem is charged once per distinct product in the cart.
var DeliveryChargePerItem = decimal.NewFromInt(100)

func ComputeTotals(items []domain.LineItem) domain.Totals {
	totals := domain.Totals{
		Subtotal:       decimal.Zero,
		DeliveryCharge: decimal.Zero,
		TotalAmount:    decimal.Zero,
	}

	distinct := make(map[string]struct{}, len(items))
	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.Subtotal = totals.Subtotal.Add(item.LineTotal())
		distinct[item.ID] = struct{}{}
	}

	totals.DeliveryCharge = DeliveryChargePerItem.Mul(decimal.NewFromInt(int64(len(distinct))))
	totals.TotalAmount = totals.Subtotal.Add(totals.DeliveryCharge)

	return totals
}
