package ordertrack

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/listview"
	"github.com/hmkim/ordertrack/pkg/models"
	"github.com/hmkim/ordertrack/pkg/session"
	"github.com/hmkim/ordertrack/pkg/viewmodel"
)

// InventoryList owns the fetched stock collection. The collection always
// holds every record, soft-deleted ones included; the visibility filter
// decides what a snapshot shows.
type InventoryList struct {
	client  *client.Client
	session *session.Context
	notices *Notices
	confirm Confirmer
	logger  zerolog.Logger

	mu         sync.Mutex
	items      []models.InventoryItem
	state      listview.State
	loading    bool
	loadErr    string
	fetchSeq   uint64
	appliedSeq uint64

	busy inflight
}

// NewInventoryList creates an inventory list controller.
func NewInventoryList(c *client.Client, sess *session.Context, notices *Notices, confirm Confirmer, logger zerolog.Logger) *InventoryList {
	return &InventoryList{
		client:  c,
		session: sess,
		notices: notices,
		confirm: confirm,
		logger:  logger,
		state:   listview.NewState(models.DimensionLocation),
	}
}

// InventoryPage is one render-ready snapshot of the list.
type InventoryPage struct {
	Items     []models.InventoryItem
	Buttons   []listview.Button
	PageCount int
	Total     int
	Locations []string
	Loading   bool
	LoadError string
	Busy      map[string]bool
	Caps      viewmodel.Capabilities
	Columns   []string
	Notices   []Notice
}

// Refresh fetches the full collection with the same stale-response guard as
// the order list.
func (l *InventoryList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.fetchSeq++
	seq := l.fetchSeq
	l.loading = true
	l.mu.Unlock()

	items, err := l.client.ListInventory(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.appliedSeq {
		return nil
	}
	l.appliedSeq = seq
	l.loading = false
	if err != nil {
		l.loadErr = "Could not load inventory."
		return err
	}
	l.loadErr = ""
	l.items = items
	return nil
}

// Page returns the current snapshot.
func (l *InventoryList) Page() InventoryPage {
	caps := viewmodel.For(l.session.CurrentUser())

	l.mu.Lock()
	defer l.mu.Unlock()
	pageItems, pageCount := listview.Apply(l.items, l.state)
	filtered := listview.Filter(l.items, l.state.Query)
	return InventoryPage{
		Items:     pageItems,
		Buttons:   listview.LayoutPageButtons(l.state.Page, pageCount),
		PageCount: pageCount,
		Total:     len(filtered),
		Locations: listview.DimensionValues(l.items, models.DimensionLocation),
		Loading:   l.loading,
		LoadError: l.loadErr,
		Busy:      l.busy.snapshot(),
		Caps:      caps,
		Columns:   viewmodel.InventoryColumns(caps),
		Notices:   l.notices.Active(),
	}
}

func (l *InventoryList) SetSearch(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetSearch(term)
}

// SetLocation narrows to one storage location; listview.All shows every
// location.
func (l *InventoryList) SetLocation(value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetDimensionValue(value)
}

func (l *InventoryList) SetVisibility(v listview.Visibility) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetVisibility(v)
}

func (l *InventoryList) SetPerPage(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetPerPage(n)
}

func (l *InventoryList) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, pageCount := listview.Apply(l.items, l.state)
	l.state.SetPage(page, pageCount)
}

func (l *InventoryList) find(id models.ItemID) (models.InventoryItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.InventoryItem{}, false
}

func itemKey(id models.ItemID) string {
	return fmt.Sprintf("item:%d", id)
}

// Create adds a stock item and reloads the collection before returning.
func (l *InventoryList) Create(ctx context.Context, it models.InventoryItem) error {
	caps := viewmodel.For(l.session.CurrentUser())
	if !caps.CanAdd {
		return ErrNotPermitted
	}
	return l.mutate(ctx, "item:new", "Item added.", func(ctx context.Context) error {
		_, err := l.client.CreateItem(ctx, it)
		return err
	})
}

// Update applies a partial change to one item. Fields equal to the known
// record are pruned first; if nothing survives the prune, the update
// short-circuits with ErrNoChanges and no request is issued.
func (l *InventoryList) Update(ctx context.Context, id models.ItemID, patch models.InventoryPatch) error {
	current, known := l.find(id)
	if known {
		patch = patch.Prune(current)
	}
	if patch.Empty() {
		l.notices.Info("No changes to save.")
		return ErrNoChanges
	}
	return l.mutate(ctx, itemKey(id), "Item updated.", func(ctx context.Context) error {
		_, err := l.client.UpdateItem(ctx, id, patch)
		return err
	})
}

// Delete soft-deletes an item after confirmation; the record drops out of
// the default active view but stays restorable.
func (l *InventoryList) Delete(ctx context.Context, id models.ItemID) error {
	caps := viewmodel.For(l.session.CurrentUser())
	if !caps.CanDelete {
		return ErrNotPermitted
	}
	if !l.confirm(fmt.Sprintf("Delete item %d?", id)) {
		return nil
	}
	return l.mutate(ctx, itemKey(id), "Item deleted.", func(ctx context.Context) error {
		return l.client.DeleteItem(ctx, id)
	})
}

// Restore reverses a soft delete after confirmation.
func (l *InventoryList) Restore(ctx context.Context, id models.ItemID) error {
	caps := viewmodel.For(l.session.CurrentUser())
	if !caps.CanRestore {
		return ErrNotPermitted
	}
	if !l.confirm(fmt.Sprintf("Restore item %d?", id)) {
		return nil
	}
	return l.mutate(ctx, itemKey(id), "Item restored.", func(ctx context.Context) error {
		return l.client.RestoreItem(ctx, id)
	})
}

// Logs fetches the stock-movement history of one item.
func (l *InventoryList) Logs(ctx context.Context, id models.ItemID) ([]models.InventoryLog, error) {
	logs, err := l.client.ItemLogs(ctx, id)
	if err != nil {
		return nil, l.reportFailure(err)
	}
	return logs, nil
}

// Suggest returns autocomplete candidates from the active items whose name
// contains term, case-insensitively.
func (l *InventoryList) Suggest(term string, limit int) []Suggestion {
	l.mu.Lock()
	defer l.mu.Unlock()
	return SuggestItems(l.items, term, limit)
}

func (l *InventoryList) mutate(ctx context.Context, key, successMsg string, op func(context.Context) error) error {
	if !l.busy.begin(key) {
		return ErrBusy
	}
	defer l.busy.end(key)

	if err := op(ctx); err != nil {
		return l.reportFailure(err)
	}
	if err := l.Refresh(ctx); err != nil {
		return err
	}
	l.notices.ClearErrors()
	l.notices.Success(successMsg)
	return nil
}

func (l *InventoryList) reportFailure(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
	case errors.Is(err, client.ErrForbidden):
		l.notices.Error("You do not have permission to perform this action.")
	default:
		l.logger.Warn().Err(err).Msg("inventory mutation failed")
		l.notices.Error("The operation could not be completed. Please try again.")
	}
	return err
}
