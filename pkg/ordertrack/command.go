package ordertrack

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/listview"
	"github.com/hmkim/ordertrack/pkg/models"
	"github.com/hmkim/ordertrack/pkg/storetest"
)

// Main runs the CLI and returns the process exit code.
func Main() int {
	if err := NewRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}

type cli struct {
	app      *App
	baseURL  string
	logLevel string
	yes      bool
}

// NewRootCommand builds the ordertrack command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "ordertrack",
		Short:         "Purchase order and inventory tracking",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ConfigFromEnv()
			if c.baseURL != "" {
				cfg.BaseURL = c.baseURL
			}
			if c.logLevel != "" {
				cfg.LogLevel = c.logLevel
			}
			confirm := stdinConfirmer(cmd)
			if c.yes {
				confirm = ConfirmAll
			}
			app, err := NewApp(cfg, confirm)
			if err != nil {
				return err
			}
			if err := app.Open(); err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "record store URL (default from ORDERTRACK_BASE_URL)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (default from ORDERTRACK_LOG_LEVEL)")
	root.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.ordersCommand(),
		c.inventoryCommand(),
		c.watchCommand(),
		c.serveCommand(),
	)
	return root
}

func stdinConfirmer(cmd *cobra.Command) Confirmer {
	return func(prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func (c *cli) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Sign in to the record store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.SignIn(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			u := c.app.Session.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := c.app.Session.CurrentUser()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), role %s\n", u.Username, u.Name, u.Role)
			return nil
		},
	}
}

// --- orders ---------------------------------------------------------------

type orderFlags struct {
	orderDate     string
	itemCode      string
	colorName     string
	quantity      int
	expectedStart string
	expectedEnd   string
	arrivalDate   string
	arrivalQty    int
	note          string
	remarks       string
	status        string
}

func (f *orderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.orderDate, "order-date", "", "order date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&f.itemCode, "item-code", "", "item code")
	cmd.Flags().StringVar(&f.colorName, "color", "", "color name")
	cmd.Flags().IntVar(&f.quantity, "quantity", 0, "order quantity")
	cmd.Flags().StringVar(&f.expectedStart, "expected-start", "", "expected arrival range start (yyyy-mm-dd)")
	cmd.Flags().StringVar(&f.expectedEnd, "expected-end", "", "expected arrival range end (yyyy-mm-dd)")
	cmd.Flags().StringVar(&f.arrivalDate, "arrival-date", "", "actual arrival date (yyyy-mm-dd)")
	cmd.Flags().IntVar(&f.arrivalQty, "arrival-quantity", 0, "arrived quantity")
	cmd.Flags().StringVar(&f.note, "note", "", "special note")
	cmd.Flags().StringVar(&f.remarks, "remarks", "", "remarks")
	cmd.Flags().StringVar(&f.status, "status", "", "status (pending|partial|arrived|delayed)")
}

// apply copies the flags the user actually set onto o.
func (f *orderFlags) apply(cmd *cobra.Command, o *models.Order) error {
	setDate := func(name, value string, target **models.Date) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		if value == "" {
			*target = nil
			return nil
		}
		d, err := models.ParseDate(value)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", name, err)
		}
		*target = &d
		return nil
	}
	if err := setDate("order-date", f.orderDate, &o.OrderDate); err != nil {
		return err
	}
	if err := setDate("expected-start", f.expectedStart, &o.ExpectedArrivalStartDate); err != nil {
		return err
	}
	if err := setDate("expected-end", f.expectedEnd, &o.ExpectedArrivalEndDate); err != nil {
		return err
	}
	if err := setDate("arrival-date", f.arrivalDate, &o.ArrivalDate); err != nil {
		return err
	}
	if cmd.Flags().Changed("item-code") {
		o.ItemCode = f.itemCode
	}
	if cmd.Flags().Changed("color") {
		o.ColorName = f.colorName
	}
	if cmd.Flags().Changed("quantity") {
		o.OrderQuantity = f.quantity
	}
	if cmd.Flags().Changed("arrival-quantity") {
		qty := f.arrivalQty
		o.ArrivalQuantity = &qty
	}
	if cmd.Flags().Changed("note") {
		o.SpecialNote = f.note
	}
	if cmd.Flags().Changed("remarks") {
		o.Remarks = f.remarks
	}
	if cmd.Flags().Changed("status") {
		s := models.Status(f.status)
		if !models.ValidStatus(s) {
			return fmt.Errorf("invalid --status %q", f.status)
		}
		o.Status = s
	}
	return nil
}

func (c *cli) ordersCommand() *cobra.Command {
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Manage purchase orders",
	}

	var year, month, search string
	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := c.app.Orders
			l.SetPeriod(year, month)
			l.SetSearch(search)
			l.SetPerPage(perPage)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			l.SetPage(page - 1)
			renderOrders(cmd.OutOrStdout(), l.Page())
			return nil
		},
	}
	list.Flags().StringVar(&year, "year", listview.All, "filter by year (e.g. 2026)")
	list.Flags().StringVar(&month, "month", listview.All, "filter by month (01-12)")
	list.Flags().StringVar(&search, "search", "", "match item code or color")
	list.Flags().IntVar(&page, "page", 1, "page to show (1-based)")
	list.Flags().IntVar(&perPage, "per-page", listview.DefaultPerPage, "rows per page (10, 15 or 20)")

	createFlags := &orderFlags{}
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a new order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var o models.Order
			o.Status = models.StatusPending
			if err := createFlags.apply(cmd, &o); err != nil {
				return err
			}
			if err := c.app.Orders.Create(cmd.Context(), o); err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}
	createFlags.register(create)

	updateFlags := &orderFlags{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an existing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := models.OrderID(args[0])
			current, err := c.app.Client.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			updated := current
			if err := updateFlags.apply(cmd, &updated); err != nil {
				return err
			}
			err = c.app.Orders.Update(cmd.Context(), id, updated)
			if err != nil && !errors.Is(err, ErrNoChanges) {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}
	updateFlags.register(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Orders.Delete(cmd.Context(), models.OrderID(args[0])); err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}

	orders.AddCommand(list, create, update, del)
	return orders
}

// --- inventory ------------------------------------------------------------

func (c *cli) inventoryCommand() *cobra.Command {
	inv := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Manage stock items",
	}

	var search, location string
	var deleted bool
	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stock items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := c.app.Inventory
			l.SetSearch(search)
			l.SetLocation(location)
			if deleted {
				l.SetVisibility(listview.VisibilityDeleted)
			}
			l.SetPerPage(perPage)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			l.SetPage(page - 1)
			renderInventory(cmd.OutOrStdout(), l.Page())
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "match item name or color")
	list.Flags().StringVar(&location, "location", listview.All, "filter by storage location")
	list.Flags().BoolVar(&deleted, "deleted", false, "show soft-deleted items instead of active ones")
	list.Flags().IntVar(&page, "page", 1, "page to show (1-based)")
	list.Flags().IntVar(&perPage, "per-page", listview.DefaultPerPage, "rows per page (10, 15 or 20)")

	var name, color, unit, loc string
	var stock, safety int
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a stock item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			it := models.InventoryItem{
				ItemName:    name,
				Stock:       stock,
				SafetyStock: safety,
				Unit:        unit,
				Visible:     true,
			}
			if color != "" {
				it.Color = &color
			}
			if loc != "" {
				it.Location = &loc
			}
			if err := c.app.Inventory.Create(cmd.Context(), it); err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "item name (required)")
	add.Flags().StringVar(&color, "color", "", "color")
	add.Flags().IntVar(&stock, "stock", 0, "initial stock")
	add.Flags().IntVar(&safety, "safety-stock", 0, "safety stock threshold")
	add.Flags().StringVar(&unit, "unit", "ea", "unit of measure")
	add.Flags().StringVar(&loc, "location", "", "storage location")
	add.MarkFlagRequired("name")

	var uName, uColor, uUnit, uLoc, memo string
	var uStock, uSafety int
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			var patch models.InventoryPatch
			if cmd.Flags().Changed("name") {
				patch.ItemName = &uName
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &uColor
			}
			if cmd.Flags().Changed("stock") {
				patch.Stock = &uStock
			}
			if cmd.Flags().Changed("safety-stock") {
				patch.SafetyStock = &uSafety
			}
			if cmd.Flags().Changed("unit") {
				patch.Unit = &uUnit
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &uLoc
			}
			patch.Memo = memo
			if err := c.app.Inventory.Refresh(cmd.Context()); err != nil {
				return err
			}
			err = c.app.Inventory.Update(cmd.Context(), id, patch)
			if err != nil && !errors.Is(err, ErrNoChanges) {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}
	update.Flags().StringVar(&uName, "name", "", "item name")
	update.Flags().StringVar(&uColor, "color", "", "color")
	update.Flags().IntVar(&uStock, "stock", 0, "stock count")
	update.Flags().IntVar(&uSafety, "safety-stock", 0, "safety stock threshold")
	update.Flags().StringVar(&uUnit, "unit", "", "unit of measure")
	update.Flags().StringVar(&uLoc, "location", "", "storage location")
	update.Flags().StringVar(&memo, "memo", "", "note for the stock movement log")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Inventory.Delete(cmd.Context(), id); err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a soft-deleted stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Inventory.Restore(cmd.Context(), id); err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), c.app.Notices.Active())
			return nil
		},
	}

	logs := &cobra.Command{
		Use:   "logs <id>",
		Short: "Show an item's stock movement history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			entries, err := c.app.Inventory.Logs(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderLogs(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	inv.AddCommand(list, add, update, del, restore, logs)
	return inv
}

func parseItemID(s string) (models.ItemID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return models.ItemID(n), nil
}

// --- watch / serve --------------------------------------------------------

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream change events from the record store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Client.Watch(cmd.Context(), func(ev client.Event) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ev.Resource, ev.Action, ev.Key)
			})
		},
	}
}

func (c *cli) serveCommand() *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory record store for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := storetest.New()
			srv.SetLogger(c.app.Logger)
			c.app.Logger.Info().Str("addr", addr).Msg("record store listening")
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (accounts: admin/admin, master/master, staff/staff)\n", addr)
			httpServer := &http.Server{Addr: addr, Handler: srv}
			go func() {
				<-cmd.Context().Done()
				httpServer.Close()
			}()
			err := httpServer.ListenAndServe()
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return serve
}
