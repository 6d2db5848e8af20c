package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Event is a change notification pushed by the record store after a
// mutation. Consumers react by re-fetching the affected collection; the
// event itself carries no record data.
type Event struct {
	Resource string `json:"resource"` // "orders" or "inventory"
	Action   string `json:"action"`   // "create", "update", "delete", "restore"
	Key      string `json:"key"`
}

// Watch subscribes to the store's change feed and invokes fn for every
// event until ctx is cancelled or the connection drops. Reconnecting is the
// caller's decision; a missed event costs at most one stale view until the
// next refresh.
func (c *Client) Watch(ctx context.Context, fn func(Event)) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/events"

	header := http.Header{}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialer := websocket.DefaultDialer
	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%w: watch: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: watch: %v", ErrUnavailable, err)
		}
		c.logger.Debug().Str("resource", ev.Resource).Str("action", ev.Action).Str("key", ev.Key).Msg("store change event")
		fn(ev)
	}
}
