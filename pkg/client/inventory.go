package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hmkim/ordertrack/pkg/models"
)

// ListInventory fetches the full stock collection, soft-deleted items
// included; the visibility filter decides what a view actually shows.
func (c *Client) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/inventory", nil)
	if err != nil {
		return nil, err
	}

	var wire []models.WireInventoryItem
	if err := decodeResponse(resp, &wire); err != nil {
		return nil, err
	}

	items := make([]models.InventoryItem, 0, len(wire))
	for _, w := range wire {
		it, err := models.ItemFromWire(w)
		if err != nil {
			c.logger.Warn().Int64("item_id", w.ID).Err(err).Msg("skipping malformed inventory record")
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// CreateItem adds a stock item; the store assigns the ID.
func (c *Client) CreateItem(ctx context.Context, it models.InventoryItem) (models.InventoryItem, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/inventory", it.Wire())
	if err != nil {
		return models.InventoryItem{}, err
	}
	var w models.WireInventoryItem
	if err := decodeResponse(resp, &w); err != nil {
		return models.InventoryItem{}, err
	}
	return models.ItemFromWire(w)
}

// UpdateItem applies a partial update to one item.
func (c *Client) UpdateItem(ctx context.Context, id models.ItemID, patch models.InventoryPatch) (models.InventoryItem, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/inventory/%d", id), patch)
	if err != nil {
		return models.InventoryItem{}, err
	}
	var w models.WireInventoryItem
	if err := decodeResponse(resp, &w); err != nil {
		return models.InventoryItem{}, err
	}
	return models.ItemFromWire(w)
}

// DeleteItem soft-deletes an item: the record stays in the collection with
// visible=0 and can be brought back with RestoreItem.
func (c *Client) DeleteItem(ctx context.Context, id models.ItemID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/inventory/%d", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// RestoreItem reverses a soft delete.
func (c *Client) RestoreItem(ctx context.Context, id models.ItemID) error {
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/inventory/%d/restore", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ItemLogs fetches the stock-movement history of one item.
func (c *Client) ItemLogs(ctx context.Context, id models.ItemID) ([]models.InventoryLog, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/inventory/%d/logs", id), nil)
	if err != nil {
		return nil, err
	}

	var wire []models.WireInventoryLog
	if err := decodeResponse(resp, &wire); err != nil {
		return nil, err
	}

	logs := make([]models.InventoryLog, 0, len(wire))
	for _, w := range wire {
		entry, err := models.LogFromWire(w)
		if err != nil {
			c.logger.Warn().Int64("item_id", int64(id)).Err(err).Msg("skipping malformed log entry")
			continue
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
