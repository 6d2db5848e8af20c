package ordertrack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/session"
)

// Config is the application configuration, read from the environment with
// working defaults so a bare `ordertrack` against a local store just runs.
type Config struct {
	// BaseURL is the record store endpoint, protocol and host only.
	BaseURL string
	// TokenDir is where the signed-in credential is persisted.
	TokenDir string
	// LogLevel is a zerolog level name.
	LogLevel string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConfigFromEnv builds the config from ORDERTRACK_* variables.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:  getEnv("ORDERTRACK_BASE_URL", "http://localhost:8080"),
		TokenDir: getEnv("ORDERTRACK_TOKEN_DIR", defaultTokenDir()),
		LogLevel: getEnv("ORDERTRACK_LOG_LEVEL", "warn"),
	}
}

func defaultTokenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ordertrack"
	}
	return filepath.Join(dir, "ordertrack")
}

// App composes the client, the session and the list controllers.
type App struct {
	Config  Config
	Logger  zerolog.Logger
	Client  *client.Client
	Session *session.Context
	Notices *Notices

	Orders    *OrderList
	Inventory *InventoryList
}

// NewApp wires the application together. The confirmer gates destructive
// actions; the unauthorized reaction is wired end to end: any 401 expires
// the session, which clears the stored credential and fires the expiry
// hook.
func NewApp(cfg Config, confirm Confirmer) (*App, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	store, err := session.NewFileTokenStore(cfg.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	sess := session.New(store, session.WithLogger(logger))

	cl := client.New(cfg.BaseURL,
		client.WithTokenSource(sess),
		client.WithOnUnauthorized(sess.Expire),
		client.WithLogger(logger),
	)

	notices := NewNotices()
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Client:    cl,
		Session:   sess,
		Notices:   notices,
		Orders:    NewOrderList(cl, sess, notices, confirm, logger),
		Inventory: NewInventoryList(cl, sess, notices, confirm, logger),
	}
	sess.SetOnExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Run `ordertrack login` to sign in again.")
	})
	return app, nil
}

// Open restores a stored session, if any.
func (a *App) Open() error {
	return a.Session.Open()
}

// SignIn authenticates against the store and persists the credential.
func (a *App) SignIn(ctx context.Context, username, password string) error {
	resp, err := a.Client.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	return a.Session.Establish(resp.Token, resp.User)
}

// SignOut tells the store goodbye and clears the local session. The remote
// call is best-effort: a dead store must not trap the user signed in.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.Client.SignOut(ctx); err != nil {
		a.Logger.Debug().Err(err).Msg("remote sign-out failed")
	}
	return a.Session.Logout()
}

// WatchAndRefresh subscribes to the store's change feed and reloads the
// matching list on every event. It blocks until ctx is done or the
// subscription drops.
func (a *App) WatchAndRefresh(ctx context.Context) error {
	return a.Client.Watch(ctx, func(ev client.Event) {
		var err error
		switch ev.Resource {
		case "orders":
			err = a.Orders.Refresh(ctx)
		case "inventory":
			err = a.Inventory.Refresh(ctx)
		}
		if err != nil {
			a.Logger.Warn().Str("resource", ev.Resource).Err(err).Msg("refresh on change event failed")
		}
	})
}
