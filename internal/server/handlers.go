package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/cartapi"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/zap"
)

var errEmptyPrincipal = errors.New("principal is required")

type handlers struct {
	repo   port.CartRepository
	logger *zap.Logger
}

func (h *handlers) getCart(c *gin.Context) {
	principal := strings.TrimSpace(c.Param("principal"))
	if principal == "" {
		badRequest(c, errEmptyPrincipal)
		return
	}

	h.respond(c, principal)
}

func (h *handlers) addItem(c *gin.Context) {
	var req cartapi.AddItemRequest
	if !bind(c, &req, &req.Principal) {
		return
	}

	item := req.Item
	if item.ID == "" {
		item.ID = req.ItemID
	}
	if req.ItemID != "" && req.ItemID != item.ID {
		badRequest(c, fmt.Errorf("itemId %q does not match item.id %q", req.ItemID, item.ID))
		return
	}
	if req.Quantity > 0 {
		item.Quantity = req.Quantity
	}
	if err := cart.Validate(&item); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.repo.AddItems(c.Request.Context(), req.Principal, []domain.LineItem{item}); err != nil {
		h.storageError(c, "repo.AddItems", err)
		return
	}

	h.respond(c, req.Principal)
}

func (h *handlers) addItems(c *gin.Context) {
	var req cartapi.AddItemsRequest
	if !bind(c, &req, &req.Principal) {
		return
	}

	if err := cart.ValidateAll(req.Items); err != nil {
		badRequest(c, err)
		return
	}

	if len(req.Items) > 0 {
		if err := h.repo.AddItems(c.Request.Context(), req.Principal, req.Items); err != nil {
			h.storageError(c, "repo.AddItems", err)
			return
		}
	}

	h.respond(c, req.Principal)
}

func (h *handlers) updateQuantity(c *gin.Context) {
	var req cartapi.UpdateQuantityRequest
	if !bind(c, &req, &req.Principal) {
		return
	}

	if req.ItemID == "" {
		badRequest(c, errors.New("itemId is required"))
		return
	}

	if err := h.repo.UpdateQuantity(c.Request.Context(), req.Principal, req.ItemID, req.Quantity); err != nil {
		h.storageError(c, "repo.UpdateQuantity", err)
		return
	}

	h.respond(c, req.Principal)
}

func (h *handlers) removeItem(c *gin.Context) {
	var req cartapi.RemoveItemRequest
	if !bind(c, &req, &req.Principal) {
		return
	}

	if req.ItemID == "" {
		badRequest(c, errors.New("itemId is required"))
		return
	}

	deleted, err := h.repo.DeleteItem(c.Request.Context(), req.Principal, req.ItemID)
	if err != nil {
		h.internalError(c, "repo.DeleteItem", err)
		return
	}
	if !deleted {
		h.logger.Debug("remove of absent item", zap.String("item_id", req.ItemID))
	}

	h.respond(c, req.Principal)
}

func (h *handlers) clearCart(c *gin.Context) {
	principal := strings.TrimSpace(c.Param("principal"))
	if principal == "" {
		badRequest(c, errEmptyPrincipal)
		return
	}

	if err := h.repo.ClearCart(c.Request.Context(), principal); err != nil {
		h.internalError(c, "repo.ClearCart", err)
		return
	}

	h.respond(c, principal)
}

func (h *handlers) batchUpdate(c *gin.Context) {
	var req cartapi.BatchUpdateRequest
	if !bind(c, &req, &req.Principal) {
		return
	}

	for idx, op := range req.Operations {
		if op.ItemID == "" {
			badRequest(c, fmt.Errorf("operations[%d]: itemId is required", idx))
			return
		}
	}

	err := h.repo.ApplyOperations(c.Request.Context(), req.Principal, req.Operations)
	if errors.Is(err, cart.ErrUnknownOperation) {
		badRequest(c, err)
		return
	}
	if err != nil {
		h.storageError(c, "repo.ApplyOperations", err)
		return
	}

	h.respond(c, req.Principal)
}

// respond writes the principal's stored cart with its totals.
func (h *handlers) respond(c *gin.Context, principal string) {
	items, err := h.repo.GetCart(c.Request.Context(), principal)
	if err != nil {
		h.internalError(c, "repo.GetCart", err)
		return
	}
	if items == nil {
		items = []domain.LineItem{}
	}

	c.JSON(http.StatusOK, domain.Cart{
		Items:  items,
		Totals: cart.ComputeTotals(items),
	})
}

// storageError answers 400 when the resulting cart cannot be stored and 500 otherwise.
func (h *handlers) storageError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrQuantityOutOfRange) {
		h.logger.Warn("cart request rejected", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusBadRequest, cartapi.ErrorResponse{Message: domain.ErrQuantityOutOfRange.Error()})
		return
	}

	h.internalError(c, op, err)
}

func (h *handlers) internalError(c *gin.Context, op string, err error) {
	h.logger.Error("cart request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, cartapi.ErrorResponse{Message: "failed to process cart"})
}

// bind decodes the JSON body into req and checks the principal it carries.
func bind(c *gin.Context, req any, principal *string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, fmt.Errorf("invalid body: %w", err))
		return false
	}

	*principal = strings.TrimSpace(*principal)
	if *principal == "" {
		badRequest(c, errEmptyPrincipal)
		return false
	}

	return true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, cartapi.ErrorResponse{Message: err.Error()})
}
