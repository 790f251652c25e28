package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"embruns/internal/client/api"
	"embruns/internal/client/session"
	"embruns/internal/logger"
	"embruns/internal/models"

	"github.com/rs/zerolog"
)

const (
	MsgEnterPassword   = "enter the admin password"
	MsgConnectionError = "connection error, please try again"
	MsgLoginRejected   = "incorrect password"
)

var ErrRejected = errors.New("adminauth: login rejected")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

type Gateway interface {
	AdminLogin(ctx context.Context, password string) (*models.AuthResponse, error)
	CheckAdmin(ctx context.Context, token string) (bool, error)
	AdminLogout(ctx context.Context, token string) error
}

// Controller owns the admin session token. Every transition that drops the
// session also removes the persisted token.
type Controller struct {
	api    Gateway
	store  session.Store
	logger zerolog.Logger

	state State
	token string
	err   string
}

func NewController(gw Gateway, store session.Store, logger zerolog.Logger) *Controller {
	return &Controller{
		api:    gw,
		store:  store,
		logger: logger.With().Str("component", "adminauth").Logger(),
	}
}

// Start restores a persisted admin session if the server still accepts it.
func (c *Controller) Start(ctx context.Context) State {
	token, ok, err := c.store.Get(session.AdminKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Admin session unreadable")
		c.reset()
		return c.state
	}
	if !ok {
		c.reset()
		return c.state
	}

	valid, err := c.api.CheckAdmin(ctx, token)
	if err != nil || !valid {
		c.logger.Info().Err(err).Str("token", logger.TokenHint(token)).Msg("Stored admin session rejected")
		c.discard()
		return c.state
	}

	c.token = token
	c.state = Authenticated
	return c.state
}

func (c *Controller) Login(ctx context.Context, password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		c.err = MsgEnterPassword
		return &api.ValidationError{Field: "password", Message: MsgEnterPassword}
	}
	c.err = ""

	resp, err := c.api.AdminLogin(ctx, password)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			c.err = se.Message
		} else {
			c.err = MsgConnectionError
		}
		c.logger.Warn().Err(err).Msg("Admin login failed")
		return err
	}
	if !resp.Success {
		c.err = resp.Message
		if c.err == "" {
			c.err = MsgLoginRejected
		}
		return fmt.Errorf("%w: %s", ErrRejected, c.err)
	}

	if err := c.store.Set(session.AdminKey, resp.SessionID); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist admin session")
	}
	c.token = resp.SessionID
	c.state = Authenticated
	c.logger.Info().Str("token", logger.TokenHint(c.token)).Msg("Admin logged in")
	return nil
}

// Logout drops the session whether or not the server can be reached. The
// server-side revoke is attempted first and its failure is only logged.
func (c *Controller) Logout(ctx context.Context) {
	if c.token != "" {
		if err := c.api.AdminLogout(ctx, c.token); err != nil {
			c.logger.Debug().Err(err).Msg("Server-side logout failed")
		}
	}
	c.discard()
}

// Expire is the forced logout applied when an authenticated call is
// rejected. It never contacts the server.
func (c *Controller) Expire() {
	if c.state == Authenticated {
		c.logger.Warn().Msg("Admin session expired")
	}
	c.discard()
}

// Token returns the current admin token, or "" when unauthenticated.
func (c *Controller) Token() string {
	return c.token
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Error() string {
	return c.err
}

func (c *Controller) discard() {
	if err := c.store.Delete(session.AdminKey); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to discard admin session")
	}
	c.reset()
}

func (c *Controller) reset() {
	c.token = ""
	c.state = Unauthenticated
}
