package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// number is a decimal that travels as a plain JSON number. Quoted numbers are
// accepted on input.
type number decimal.Decimal

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = number(d)
	return nil
}

type LineItem struct {
	ID                   string
	Title                string
	Price                decimal.Decimal
	Unit                 string
	Quantity             int
	MinimumOrderQuantity int

	// Attributes holds every other JSON field of the item (image, seller, region, ...).
	Attributes map[string]json.RawMessage
}

// EffectiveMinimum is the MOQ used for computation: an absent MOQ counts as 1.
func (i LineItem) EffectiveMinimum() int {
	if i.MinimumOrderQuantity > 0 {
		return i.MinimumOrderQuantity
	}
	return 1
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a copy that shares no mutable state with i.
func (i LineItem) Clone() LineItem {
	out := i
	if i.Attributes != nil {
		out.Attributes = make(map[string]json.RawMessage, len(i.Attributes))
		for k, v := range i.Attributes {
			out.Attributes[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for idx, item := range items {
		out[idx] = item.Clone()
	}
	return out
}

type lineItemJSON struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Price                number `json:"price"`
	Unit                 string `json:"unit"`
	Quantity             int    `json:"quantity"`
	MinimumOrderQuantity int    `json:"minimumOrderQuantity,omitempty"`
}

var lineItemKeys = []string{"id", "title", "price", "unit", "quantity", "minimumOrderQuantity"}

func (i LineItem) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(lineItemJSON{
		ID:                   i.ID,
		Title:                i.Title,
		Price:                number(i.Price),
		Unit:                 i.Unit,
		Quantity:             i.Quantity,
		MinimumOrderQuantity: i.MinimumOrderQuantity,
	})
	if err != nil {
		return nil, err
	}
	if len(i.Attributes) == 0 {
		return known, nil
	}

	fields := make(map[string]json.RawMessage, len(i.Attributes)+len(lineItemKeys))
	for k, v := range i.Attributes {
		fields[k] = v
	}
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

func (i *LineItem) UnmarshalJSON(data []byte) error {
	var known lineItemJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("line item: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("line item: %w", err)
	}
	for _, k := range lineItemKeys {
		delete(fields, k)
	}
	if len(fields) == 0 {
		fields = nil
	}

	*i = LineItem{
		ID:                   known.ID,
		Title:                known.Title,
		Price:                decimal.Decimal(known.Price),
		Unit:                 known.Unit,
		Quantity:             known.Quantity,
		MinimumOrderQuantity: known.MinimumOrderQuantity,
		Attributes:           fields,
	}
	return nil
}

type Totals struct {
	TotalItems     int
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	TotalAmount    decimal.Decimal
}

func (t Totals) Equal(other Totals) bool {
	return t.TotalItems == other.TotalItems &&
		t.Subtotal.Equal(other.Subtotal) &&
		t.DeliveryCharge.Equal(other.DeliveryCharge) &&
		t.TotalAmount.Equal(other.TotalAmount)
}

// Cart is the wire shape returned by the cart backend.
type Cart struct {
	Items []LineItem
	Totals
}

type cartJSON struct {
	Items          []LineItem `json:"items"`
	TotalItems     int        `json:"totalItems"`
	Subtotal       number     `json:"subtotal"`
	DeliveryCharge number     `json:"deliveryCharge"`
	TotalAmount    number     `json:"totalAmount"`
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{
		Items:          c.Items,
		TotalItems:     c.TotalItems,
		Subtotal:       number(c.Subtotal),
		DeliveryCharge: number(c.DeliveryCharge),
		TotalAmount:    number(c.TotalAmount),
	})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var wire cartJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("cart: %w", err)
	}

	*c = Cart{
		Items: wire.Items,
		Totals: Totals{
			TotalItems:     wire.TotalItems,
			Subtotal:       decimal.Decimal(wire.Subtotal),
			DeliveryCharge: decimal.Decimal(wire.DeliveryCharge),
			TotalAmount:    decimal.Decimal(wire.TotalAmount),
		},
	}
	return nil
}

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

type CartState struct {
	Items      []LineItem
	Totals     Totals
	Loading    bool
	Error      string
	SyncStatus SyncStatus
}

func (s CartState) Clone() CartState {
	out := s
	out.Items = CloneItems(s.Items)
	return out
}

type OperationType string

const (
	OpUpdate OperationType = "update"
	OpRemove OperationType = "remove"
)

type Operation struct {
	ItemID   string        `json:"itemId"`
	Type     OperationType `json:"type"`
	Quantity int           `json:"quantity,omitempty"`
}

type Principal struct {
	ID    string
	Email string
	Role  string
}

func (p Principal) Authenticated() bool {
	return p.Email != ""
}
