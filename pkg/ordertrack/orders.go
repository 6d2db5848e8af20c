package ordertrack

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/listview"
	"github.com/hmkim/ordertrack/pkg/models"
	"github.com/hmkim/ordertrack/pkg/session"
	"github.com/hmkim/ordertrack/pkg/viewmodel"
)

// OrderList owns the fetched order collection and every change made to it.
// All reads go through Page snapshots; all writes go through the mutation
// methods, which reload the full collection before reporting success.
type OrderList struct {
	client  *client.Client
	session *session.Context
	notices *Notices
	confirm Confirmer
	logger  zerolog.Logger

	mu         sync.Mutex
	orders     []models.Order
	state      listview.State
	query      client.ListOrdersQuery
	loading    bool
	loadErr    string
	fetchSeq   uint64
	appliedSeq uint64

	busy inflight
}

// NewOrderList creates an order list controller. The confirmer gates
// deletes; pass ConfirmAll to skip prompting.
func NewOrderList(c *client.Client, sess *session.Context, notices *Notices, confirm Confirmer, logger zerolog.Logger) *OrderList {
	return &OrderList{
		client:  c,
		session: sess,
		notices: notices,
		confirm: confirm,
		logger:  logger,
		state:   listview.NewState(""),
	}
}

// OrdersPage is one render-ready snapshot of the list.
type OrdersPage struct {
	Orders    []models.Order
	Buttons   []listview.Button
	PageCount int
	Total     int
	Loading   bool
	LoadError string
	Busy      map[string]bool
	Caps      viewmodel.Capabilities
	Columns   []string
	Notices   []Notice
}

// Refresh fetches the full collection. A response that arrives after a
// newer fetch has already been applied is dropped, so the list can never
// move backwards in time.
func (l *OrderList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.fetchSeq++
	seq := l.fetchSeq
	l.loading = true
	q := l.query
	l.mu.Unlock()

	orders, err := l.client.ListOrders(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.appliedSeq {
		return nil
	}
	l.appliedSeq = seq
	l.loading = false
	if err != nil {
		l.loadErr = "Could not load orders."
		return err
	}
	l.loadErr = ""
	l.orders = orders
	return nil
}

// Page returns the current snapshot.
func (l *OrderList) Page() OrdersPage {
	caps := viewmodel.For(l.session.CurrentUser())

	l.mu.Lock()
	defer l.mu.Unlock()
	pageOrders, pageCount := listview.Apply(l.orders, l.state)
	filtered := listview.Filter(l.orders, l.state.Query)
	return OrdersPage{
		Orders:    pageOrders,
		Buttons:   listview.LayoutPageButtons(l.state.Page, pageCount),
		PageCount: pageCount,
		Total:     len(filtered),
		Loading:   l.loading,
		LoadError: l.loadErr,
		Busy:      l.busy.snapshot(),
		Caps:      caps,
		Columns:   viewmodel.OrderColumns(caps),
		Notices:   l.notices.Active(),
	}
}

// SetSearch changes the text criterion. The term narrows the server query
// and the in-memory filter the same way, so the list is consistent whether
// or not a refetch has happened yet.
func (l *OrderList) SetSearch(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query.Search = term
	l.state.SetSearch(term)
}

// SetPeriod changes the server-side year/month criteria. "all" or empty
// disables one.
func (l *OrderList) SetPeriod(year, month string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query.Year = year
	l.query.Month = month
	l.state.Page = 0
}

func (l *OrderList) SetPerPage(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetPerPage(n)
}

func (l *OrderList) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, pageCount := listview.Apply(l.orders, l.state)
	l.state.SetPage(page, pageCount)
}

func (l *OrderList) find(id models.OrderID) (models.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// Create submits a new order and reloads the collection before returning.
func (l *OrderList) Create(ctx context.Context, o models.Order) error {
	caps := viewmodel.For(l.session.CurrentUser())
	if !caps.CanAdd {
		return ErrNotPermitted
	}
	return l.mutate(ctx, "order:new", "Order registered.", func(ctx context.Context) error {
		_, err := l.client.CreateOrder(ctx, o)
		return err
	})
}

// Update replaces an order's mutable fields. An update identical to the
// known record short-circuits with ErrNoChanges and never reaches the
// store; a status change by a role without the capability is refused the
// same way.
func (l *OrderList) Update(ctx context.Context, id models.OrderID, updated models.Order) error {
	current, known := l.find(id)
	if !known {
		fetched, err := l.client.GetOrder(ctx, id)
		if err != nil {
			return l.reportFailure(err)
		}
		current = fetched
	}

	updated.ID = id
	if current.Equal(updated) {
		l.notices.Info("No changes to save.")
		return ErrNoChanges
	}
	if updated.Status != current.Status {
		caps := viewmodel.For(l.session.CurrentUser())
		if !caps.CanMutateStatus {
			return ErrNotPermitted
		}
	}
	return l.mutate(ctx, string(id), "Order updated.", func(ctx context.Context) error {
		_, err := l.client.UpdateOrder(ctx, id, updated)
		return err
	})
}

// Delete removes an order after confirmation.
func (l *OrderList) Delete(ctx context.Context, id models.OrderID) error {
	caps := viewmodel.For(l.session.CurrentUser())
	if !caps.CanDelete {
		return ErrNotPermitted
	}
	if !l.confirm("Delete order " + string(id) + "?") {
		return nil
	}
	return l.mutate(ctx, string(id), "Order deleted.", func(ctx context.Context) error {
		return l.client.DeleteOrder(ctx, id)
	})
}

// mutate runs one guarded mutation: claim the record, perform the call,
// reload the whole collection, then post the success notice.
func (l *OrderList) mutate(ctx context.Context, key, successMsg string, op func(context.Context) error) error {
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

// reportFailure posts the user-facing notice for a failed store call. 401
// passes through untouched: the session layer already reacted and owns the
// messaging for it.
func (l *OrderList) reportFailure(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
	case errors.Is(err, client.ErrForbidden):
		l.notices.Error("You do not have permission to perform this action.")
	default:
		l.logger.Warn().Err(err).Msg("order mutation failed")
		l.notices.Error("The operation could not be completed. Please try again.")
	}
	return err
}
