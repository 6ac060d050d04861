package cartapi

import "github.com/nikolayk812/agrocart/internal/domain"

// Request bodies of the cart REST surface. The reference server binds the
// same types.

type AddItemRequest struct {
	Principal string          `json:"principal"`
	ItemID    string          `json:"itemId"`
	Quantity  int             `json:"quantity"`
	Item      domain.LineItem `json:"item"`
}

type AddItemsRequest struct {
	Principal string            `json:"principal"`
	Items     []domain.LineItem `json:"items"`
}

type UpdateQuantityRequest struct {
	Principal string `json:"principal"`
	ItemID    string `json:"itemId"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	Principal string `json:"principal"`
	ItemID    string `json:"itemId"`
}

type BatchUpdateRequest struct {
	Principal  string             `json:"principal"`
	Operations []domain.Operation `json:"operations"`
}

// ErrorResponse is the body of a non-2xx response. Backends differ in which
// of the two fields they fill.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r ErrorResponse) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}
