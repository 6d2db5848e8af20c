// Package session is the process-wide authentication context. It owns the
// single durable credential and the current user identity, with an explicit
// lifecycle: Open reads the stored credential, Establish records a fresh
// sign-in, and Logout/Expire tear the session down. Every other component
// receives it by injection and only ever reads from it.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hmkim/ordertrack/pkg/models"
)

// Context holds the authenticated session state. It implements
// client.TokenSource. The zero value is unusable; construct with New.
type Context struct {
	mu        sync.Mutex
	store     TokenStore
	token     string
	user      *models.User
	onExpired func()
	logger    zerolog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

// New creates a session context backed by the given credential store.
func New(store TokenStore, opts ...Option) *Context {
	c := &Context{store: store, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnExpired registers the hook fired when the session is invalidated by
// an unauthorized store response. The boundary layer uses it to route to
// the login entry point; it runs at most once per expiry.
func (c *Context) SetOnExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// Open restores a previous session from durable storage. A missing or
// unreadable credential leaves the context logged out; that is not an
// error.
func (c *Context) Open() error {
	token, err := c.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := userFromToken(token)
	if err != nil {
		c.logger.Debug().Err(err).Msg("discarding stored credential")
		return c.store.Clear()
	}

	c.mu.Lock()
	c.token = token
	c.user = user
	c.mu.Unlock()
	c.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("session restored")
	return nil
}

// Establish records a fresh sign-in and persists the credential.
func (c *Context) Establish(token string, user models.User) error {
	if err := c.store.Save(token); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	u := user
	c.user = &u
	c.mu.Unlock()
	return nil
}

// Token returns the current bearer credential, or "" when logged out.
func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// CurrentUser returns the authenticated identity, or nil when there is
// none. Callers treat nil as fully unprivileged.
func (c *Context) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Logout clears the credential and the identity.
func (c *Context) Logout() error {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
	return c.store.Clear()
}

// Expire is the reaction to an unauthorized store response: clear the
// stored credential, drop the identity and fire the expiry hook. Safe to
// call repeatedly; the hook only fires while a session actually exists.
func (c *Context) Expire() {
	c.mu.Lock()
	hadSession := c.token != ""
	c.token = ""
	c.user = nil
	fn := c.onExpired
	c.mu.Unlock()

	if !hadSession {
		return
	}
	if err := c.store.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear expired credential")
	}
	c.logger.Info().Msg("session expired")
	if fn != nil {
		fn()
	}
}
