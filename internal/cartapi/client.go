// Package cartapi talks to the remote cart service over its JSON REST surface.
package cartapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/nikolayk812/agrocart/internal/cart"
	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

var ErrEmptyPrincipal = errors.New("principal is empty")

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.Config, tokens port.TokenSource, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				// writes are not retried on transport errors: the first attempt may have landed
				return resp != nil && resp.Request != nil && resp.Request.Method == http.MethodGet
			}
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if tokens != nil {
				if token := tokens.Token(); token != "" {
					req.SetAuthToken(token)
				}
			}
			req.SetHeader(RequestIDHeader, uuid.NewString())
			return nil
		})

	return &Client{
		http:   httpClient,
		logger: logger.Named("cartapi"),
	}
}

func (c *Client) GetCart(ctx context.Context, principal string) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetPathParam("principal", principal)
	return c.do(ctx, "GetCart", req, http.MethodGet, "/cart/{principal}")
}

func (c *Client) AddItem(ctx context.Context, principal string, item domain.LineItem) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetBody(AddItemRequest{
		Principal: principal,
		ItemID:    item.ID,
		Quantity:  item.Quantity,
		Item:      item,
	})
	return c.do(ctx, "AddItem", req, http.MethodPost, "/cart/add")
}

func (c *Client) AddItems(ctx context.Context, principal string, items []domain.LineItem) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetBody(AddItemsRequest{Principal: principal, Items: items})
	return c.do(ctx, "AddItems", req, http.MethodPost, "/cart/add-multiple")
}

func (c *Client) UpdateQuantity(ctx context.Context, principal, itemID string, quantity int) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetBody(UpdateQuantityRequest{Principal: principal, ItemID: itemID, Quantity: quantity})
	return c.do(ctx, "UpdateQuantity", req, http.MethodPut, "/cart/update")
}

func (c *Client) RemoveItem(ctx context.Context, principal, itemID string) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetBody(RemoveItemRequest{Principal: principal, ItemID: itemID})
	return c.do(ctx, "RemoveItem", req, http.MethodDelete, "/cart/remove")
}

func (c *Client) ClearCart(ctx context.Context, principal string) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetPathParam("principal", principal)
	return c.do(ctx, "ClearCart", req, http.MethodDelete, "/cart/clear/{principal}")
}

func (c *Client) BatchUpdate(ctx context.Context, principal string, ops []domain.Operation) (domain.Cart, error) {
	if principal == "" {
		return domain.Cart{}, ErrEmptyPrincipal
	}

	req := c.http.R().SetBody(BatchUpdateRequest{Principal: principal, Operations: ops})
	return c.do(ctx, "BatchUpdate", req, http.MethodPost, "/cart/batch-update")
}

func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string) (domain.Cart, error) {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		c.logger.Warn("cart backend unreachable", zap.String("op", op), zap.Error(err))
		return domain.Cart{}, &domain.RemoteError{Err: fmt.Errorf("cartapi.%s: %w", op, err)}
	}

	c.logger.Debug("cart backend call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", resp.Time()),
		zap.String("request_id", resp.Request.Header.Get(RequestIDHeader)),
	)

	if resp.StatusCode() == http.StatusNotFound && method == http.MethodGet {
		return emptyCart(), nil
	}
	if resp.IsError() {
		return domain.Cart{}, remoteErrorFromResponse(resp)
	}

	return decodeCart(resp)
}

func decodeCart(resp *resty.Response) (domain.Cart, error) {
	var out domain.Cart
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return domain.Cart{}, &domain.RemoteError{
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("json.Unmarshal: %w", err),
		}
	}
	if out.Items == nil {
		out.Items = []domain.LineItem{}
	}
	return out, nil
}

func remoteErrorFromResponse(resp *resty.Response) error {
	var body ErrorResponse
	_ = json.Unmarshal(resp.Body(), &body)

	remoteErr := &domain.RemoteError{
		StatusCode: resp.StatusCode(),
		Message:    body.Text(),
	}

	if domain.IsAuthStatus(resp.StatusCode()) {
		return &domain.AuthExpiredError{RemoteError: remoteErr}
	}
	return remoteErr
}

func emptyCart() domain.Cart {
	return domain.Cart{
		Items:  []domain.LineItem{},
		Totals: cart.ComputeTotals(nil),
	}
}
