// Package access implements the visitor gate: it decides whether the main
// site may be shown, consulting the site lock and the stored visitor session.
package access

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
	"golang.org/x/sync/errgroup"
)

const maxCodeLength = 10

// Operator-facing messages.
const (
	MsgEnterCode       = "enter the access code"
	MsgConnectionError = "connection error, please try again"
	MsgCodeRejected    = "invalid access code"
)

var (
	ErrNotPrompting = errors.New("access: gate is not waiting for a code")
	// ErrRejected wraps a server verdict refusing the submitted code.
	ErrRejected = errors.New("access: code rejected")
)

type State int

const (
	Checking State = iota
	PromptingForCode
	Granted
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case PromptingForCode:
		return "prompting"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// Gateway is the slice of the REST API the gate needs.
type Gateway interface {
	RestaurantInfo(ctx context.Context) (*models.RestaurantInfo, error)
	SiteSettings(ctx context.Context) (*models.SiteSettings, error)
	CheckAccess(ctx context.Context, token string) (bool, error)
	VerifyAccessCode(ctx context.Context, code string) (*models.AuthResponse, error)
}

// Controller is driven by one operator at a time and is not safe for
// concurrent use.
type Controller struct {
	api    Gateway
	store  session.Store
	logger zerolog.Logger

	state State
	info  *models.RestaurantInfo
	input string
	err   string
}

func NewController(gw Gateway, store session.Store, logger zerolog.Logger) *Controller {
	return &Controller{
		api:    gw,
		store:  store,
		logger: logger.With().Str("component", "access").Logger(),
		state:  Checking,
	}
}

// Start reads restaurant info and site settings in parallel, then resolves
// the gate. An unlocked site is granted without looking at any session.
// A failed settings read counts as locked.
func (c *Controller) Start(ctx context.Context) State {
	c.state = Checking
	c.err = ""

	var (
		g        errgroup.Group
		info     *models.RestaurantInfo
		settings *models.SiteSettings
	)
	g.Go(func() (err error) {
		if info, err = c.api.RestaurantInfo(ctx); err != nil {
			return fmt.Errorf("restaurant info: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if settings, err = c.api.SiteSettings(ctx); err != nil {
			return fmt.Errorf("site settings: %w", err)
		}
		return nil
	})
	// Neither read is fatal: the gate resolves on whatever arrived.
	if err := g.Wait(); err != nil {
		c.logger.Warn().Err(err).Bool("assume_locked", settings == nil).Msg("Gate read failed")
	}

	c.info = info

	if settings != nil && !settings.IsLocked {
		c.logger.Debug().Msg("Site unlocked, gate bypassed")
		c.state = Granted
		return c.state
	}

	token, ok, err := c.store.Get(session.VisitorKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Visitor session unreadable")
	}
	if err != nil || !ok {
		c.state = PromptingForCode
		return c.state
	}

	valid, err := c.api.CheckAccess(ctx, token)
	if err != nil || !valid {
		c.logger.Info().Err(err).Str("token", logger.TokenHint(token)).Msg("Stored visitor session rejected")
		if derr := c.store.Delete(session.VisitorKey); derr != nil {
			c.logger.Warn().Err(derr).Msg("Failed to discard visitor session")
		}
		c.state = PromptingForCode
		return c.state
	}

	c.state = Granted
	return c.state
}

// Submit sends an access code for verification. Malformed codes are
// rejected locally with a *api.ValidationError and no request is made.
func (c *Controller) Submit(ctx context.Context, code string) error {
	if c.state == Granted {
		return nil
	}
	if c.state != PromptingForCode {
		return ErrNotPrompting
	}

	code = strings.TrimSpace(code)
	if !validCode(code) {
		c.err = MsgEnterCode
		return &api.ValidationError{Field: "code", Message: MsgEnterCode}
	}
	c.input = code
	c.err = ""

	resp, err := c.api.VerifyAccessCode(ctx, code)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			c.err = se.Message
		} else {
			c.err = MsgConnectionError
		}
		c.logger.Warn().Err(err).Msg("Access verification failed")
		return err
	}

	if !resp.Success {
		c.err = resp.Message
		if c.err == "" {
			c.err = MsgCodeRejected
		}
		c.input = ""
		return fmt.Errorf("%w: %s", ErrRejected, c.err)
	}

	if err := c.store.Set(session.VisitorKey, resp.SessionID); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist visitor session")
	}
	c.input = ""
	c.state = Granted
	return nil
}

func (c *Controller) State() State {
	return c.state
}

// Error is the message currently shown to the visitor, or "".
func (c *Controller) Error() string {
	return c.err
}

// Input is the last submitted code still awaiting a verdict. A server
// rejection clears it; a transport failure keeps it for resubmission.
func (c *Controller) Input() string {
	return c.input
}

// Info returns the restaurant info read at Start, or nil if that read failed.
func (c *Controller) Info() *models.RestaurantInfo {
	return c.info
}

func validCode(code string) bool {
	if code == "" || len(code) > maxCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
