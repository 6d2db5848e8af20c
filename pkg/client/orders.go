package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/hmkim/ordertrack/pkg/models"
)

// ListOrdersQuery narrows the order list server-side. "all" (or empty)
// disables a criterion; the engine still filters the returned collection
// client-side, so the two stay consistent.
type ListOrdersQuery struct {
	Year   string
	Month  string
	Search string
}

// ListOrders fetches the order collection, newest first. A record the
// normalizer rejects is skipped with a warning rather than failing the
// whole list.
func (c *Client) ListOrders(ctx context.Context, q ListOrdersQuery) ([]models.Order, error) {
	params := url.Values{}
	if q.Year != "" && q.Year != "all" {
		params.Set("year", q.Year)
	}
	if q.Month != "" && q.Month != "all" {
		params.Set("month", q.Month)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	path := "/api/orders"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var wire []models.WireOrder
	if err := decodeResponse(resp, &wire); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(wire))
	for _, w := range wire {
		o, err := models.OrderFromWire(w)
		if err != nil {
			c.logger.Warn().Str("order_id", w.ID).Err(err).Msg("skipping malformed order record")
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, id models.OrderID) (models.Order, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%s", id), nil)
	if err != nil {
		return models.Order{}, err
	}
	var w models.WireOrder
	if err := decodeResponse(resp, &w); err != nil {
		return models.Order{}, err
	}
	return models.OrderFromWire(w)
}

// CreateOrder submits a new order. The ID is assigned by the store; the
// caller's ID field is ignored.
func (c *Client) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/orders", o.Wire())
	if err != nil {
		return models.Order{}, err
	}
	var w models.WireOrder
	if err := decodeResponse(resp, &w); err != nil {
		return models.Order{}, err
	}
	return models.OrderFromWire(w)
}

// UpdateOrder replaces the mutable fields of an existing order.
func (c *Client) UpdateOrder(ctx context.Context, id models.OrderID, o models.Order) (models.Order, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%s", id), o.Wire())
	if err != nil {
		return models.Order{}, err
	}
	var w models.WireOrder
	if err := decodeResponse(resp, &w); err != nil {
		return models.Order{}, err
	}
	return models.OrderFromWire(w)
}

// DeleteOrder removes an order. Orders have no soft-delete; this is final
// from the client's point of view.
func (c *Client) DeleteOrder(ctx context.Context, id models.OrderID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
