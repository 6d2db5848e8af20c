package ordertrack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/listview"
	"github.com/hmkim/ordertrack/pkg/models"
	"github.com/hmkim/ordertrack/pkg/session"
	"github.com/hmkim/ordertrack/pkg/storetest"
)

func newTestApp(t *testing.T, confirm Confirmer) (*App, *storetest.Server) {
	t.Helper()
	store := storetest.New()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	app, err := NewApp(Config{
		BaseURL:  srv.URL,
		TokenDir: t.TempDir(),
		LogLevel: "disabled",
	}, confirm)
	require.NoError(t, err)
	return app, store
}

func signInAs(t *testing.T, app *App, username string) {
	t.Helper()
	require.NoError(t, app.SignIn(context.Background(), username, username))
}

func TestInflightGuard(t *testing.T) {
	var g inflight
	require.True(t, g.begin("PO-1"))
	assert.False(t, g.begin("PO-1"))
	assert.True(t, g.begin("PO-2"))

	g.end("PO-1")
	assert.True(t, g.begin("PO-1"))

	snap := g.snapshot()
	assert.True(t, snap["PO-1"])
	assert.True(t, snap["PO-2"])
}

// An update identical to the known record must not issue any request.
func TestNoOpInventoryUpdate(t *testing.T) {
	app, store := newTestApp(t, ConfirmAll)
	signInAs(t, app, "master")

	seeded := store.SeedItem(models.WireInventoryItem{ItemName: "Zipper", Stock: 10, Unit: "ea"})
	require.NoError(t, app.Inventory.Refresh(context.Background()))
	store.ResetRequests()

	name, stock := "Zipper", 10
	err := app.Inventory.Update(context.Background(), models.ItemID(seeded.ID), models.InventoryPatch{
		ItemName: &name,
		Stock:    &stock,
	})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Empty(t, store.Requests())

	notices := app.Notices.Active()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeInfo, notices[0].Kind)
}

func TestNoOpOrderUpdate(t *testing.T) {
	app, store := newTestApp(t, ConfirmAll)
	signInAs(t, app, "admin")

	seeded := store.SeedOrder(models.WireOrder{OrderDate: "2026-01-10", ItemCode: "FAB-100"})
	require.NoError(t, app.Orders.Refresh(context.Background()))
	store.ResetRequests()

	current, ok := app.Orders.find(models.OrderID(seeded.ID))
	require.True(t, ok)
	err := app.Orders.Update(context.Background(), current.ID, current)
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Empty(t, store.Requests())
}

// A confirmed delete issues the DELETE, then reloads the whole collection;
// the default active view no longer shows the record, the deleted view does.
func TestConfirmedInventoryDelete(t *testing.T) {
	app, store := newTestApp(t, ConfirmAll)
	signInAs(t, app, "admin")

	store.SeedItem(models.WireInventoryItem{ID: 5, ItemName: "Button"})
	store.SeedItem(models.WireInventoryItem{ID: 6, ItemName: "Fabric"})
	require.NoError(t, app.Inventory.Refresh(context.Background()))
	store.ResetRequests()

	require.NoError(t, app.Inventory.Delete(context.Background(), 5))

	requests := store.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "DELETE /api/inventory/5", requests[0])
	assert.Equal(t, "GET /api/inventory", requests[1])

	page := app.Inventory.Page()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Fabric", page.Items[0].ItemName)

	app.Inventory.SetVisibility(listview.VisibilityDeleted)
	page = app.Inventory.Page()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Button", page.Items[0].ItemName)
}

func TestDeclinedDeleteDoesNothing(t *testing.T) {
	app, store := newTestApp(t, func(string) bool { return false })
	signInAs(t, app, "admin")

	store.SeedItem(models.WireInventoryItem{ID: 5, ItemName: "Button"})
	require.NoError(t, app.Inventory.Refresh(context.Background()))
	store.ResetRequests()

	require.NoError(t, app.Inventory.Delete(context.Background(), 5))
	assert.Empty(t, store.Requests())
}

func TestStaffMutationsNotPermitted(t *testing.T) {
	app, store := newTestApp(t, ConfirmAll)
	signInAs(t, app, "staff")

	seeded := store.SeedOrder(models.WireOrder{OrderDate: "2026-01-10", ItemCode: "FAB-100"})
	require.NoError(t, app.Orders.Refresh(context.Background()))
	require.NoError(t, app.Inventory.Refresh(context.Background()))
	store.ResetRequests()

	t.Run("delete order", func(t *testing.T) {
		assert.ErrorIs(t, app.Orders.Delete(context.Background(), models.OrderID(seeded.ID)), ErrNotPermitted)
	})
	t.Run("create order", func(t *testing.T) {
		assert.ErrorIs(t, app.Orders.Create(context.Background(), models.Order{ItemCode: "X"}), ErrNotPermitted)
	})
	t.Run("status change", func(t *testing.T) {
		current, ok := app.Orders.find(models.OrderID(seeded.ID))
		require.True(t, ok)
		current.Status = models.StatusArrived
		assert.ErrorIs(t, app.Orders.Update(context.Background(), current.ID, current), ErrNotPermitted)
	})
	t.Run("add item", func(t *testing.T) {
		assert.ErrorIs(t, app.Inventory.Create(context.Background(), models.InventoryItem{ItemName: "X"}), ErrNotPermitted)
	})

	assert.Empty(t, store.Requests(), "refused mutations must not reach the store")

	page := app.Orders.Page()
	assert.False(t, page.Caps.CanDelete)
	assert.NotContains(t, page.Columns, "actions")
}

// Any unauthorized response tears the session down, no matter which call
// hit it.
func TestUnauthorizedClearsSession(t *testing.T) {
	app, _ := newTestApp(t, ConfirmAll)
	signInAs(t, app, "admin")
	require.NotNil(t, app.Session.CurrentUser())

	// Replace the credential with garbage so the next call gets a 401.
	require.NoError(t, app.Session.Establish("garbage", models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}))

	err := app.Orders.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, app.Session.Token())
	assert.Nil(t, app.Session.CurrentUser())
}

// A successful mutation reloads before reporting success and posts the
// confirmation notice.
func TestMutationReloadsAndNotifies(t *testing.T) {
	app, store := newTestApp(t, ConfirmAll)
	signInAs(t, app, "admin")

	require.NoError(t, app.Orders.Refresh(context.Background()))
	store.ResetRequests()

	d, err := models.ParseDate("2026-04-01")
	require.NoError(t, err)
	require.NoError(t, app.Orders.Create(context.Background(), models.Order{
		OrderDate:     &d,
		ItemCode:      "FAB-700",
		OrderQuantity: 25,
	}))

	requests := store.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "POST /api/orders", requests[0])
	assert.Equal(t, "GET /api/orders", requests[1])

	page := app.Orders.Page()
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "FAB-700", page.Orders[0].ItemCode)

	notices := app.Notices.Active()
	require.NotEmpty(t, notices)
	assert.Equal(t, NoticeSuccess, notices[len(notices)-1].Kind)
}

// A late response from an older fetch must never overwrite the result of a
// newer one.
func TestStaleFetchDropped(t *testing.T) {
	stale := []models.WireOrder{
		{ID: "PO-000001", OrderDate: "2026-01-01", ItemCode: "OLD"},
	}
	fresh := []models.WireOrder{
		{ID: "PO-000001", OrderDate: "2026-01-01", ItemCode: "OLD"},
		{ID: "PO-000002", OrderDate: "2026-01-02", ItemCode: "NEW"},
	}

	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			<-release
			json.NewEncoder(w).Encode(stale)
			return
		}
		json.NewEncoder(w).Encode(fresh)
	}))
	defer srv.Close()

	sess := session.New(&session.MemTokenStore{})
	l := NewOrderList(client.New(srv.URL), sess, NewNotices(), ConfirmAll, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- l.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, 2, l.Page().Total)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, l.Page().Total, "stale response must not win")
}
