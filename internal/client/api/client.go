package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"embruns/internal/logger"
	"embruns/internal/models"

	"github.com/rs/zerolog"
)

const maxBodySize = 1 << 20

// Client talks to the restaurant REST API. Authenticated methods take the
// admin token explicitly; the client holds no session state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type settingsPayload struct {
	IsLocked *bool `json:"is_locked"`
}

type checkPayload struct {
	HasAccess *bool `json:"hasAccess"`
}

type authPayload struct {
	Success   *bool  `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type settingsUpdatePayload struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Settings settingsPayload `json:"settings"`
}

type mutationPayload struct {
	Success *bool            `json:"success"`
	Message string           `json:"message"`
	Item    *models.MenuItem `json:"item"`
}

func (c *Client) RestaurantInfo(ctx context.Context) (*models.RestaurantInfo, error) {
	var info models.RestaurantInfo
	if err := c.do(ctx, "restaurant info", http.MethodGet, "/restaurant/info", "", nil, &info); err != nil {
		return nil, err
	}
	if info.Name == "" {
		return nil, malformed("restaurant info", "missing name")
	}
	return &info, nil
}

// Menu returns the public menu.
func (c *Client) Menu(ctx context.Context) ([]models.MenuCategory, error) {
	return c.menu(ctx, "menu", "/menu", "")
}

func (c *Client) SiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	var p settingsPayload
	if err := c.do(ctx, "site settings", http.MethodGet, "/site/settings", "", nil, &p); err != nil {
		return nil, err
	}
	if p.IsLocked == nil {
		return nil, malformed("site settings", "missing is_locked")
	}
	return &models.SiteSettings{IsLocked: *p.IsLocked}, nil
}

// VerifyAccessCode returns the server verdict. A rejected code is not an
// error: the response comes back with Success false and the server message.
func (c *Client) VerifyAccessCode(ctx context.Context, code string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "access verify", "/access/verify", models.AccessRequest{Code: code})
}

func (c *Client) CheckAccess(ctx context.Context, token string) (bool, error) {
	return c.check(ctx, "access check", "/access/check/", token)
}

func (c *Client) AdminLogin(ctx context.Context, password string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "admin login", "/admin/login", models.AdminLoginRequest{Password: password})
}

func (c *Client) CheckAdmin(ctx context.Context, token string) (bool, error) {
	return c.check(ctx, "admin check", "/admin/check/", token)
}

func (c *Client) AdminLogout(ctx context.Context, token string) error {
	return c.do(ctx, "admin logout", http.MethodPost, "/admin/logout", token, struct{}{}, nil)
}

// AdminMenu returns every category, hidden ones included.
func (c *Client) AdminMenu(ctx context.Context, token string) ([]models.MenuCategory, error) {
	return c.menu(ctx, "admin menu", "/admin/menu", token)
}

func (c *Client) UpdateSiteSettings(ctx context.Context, token string, locked bool) (*models.SiteSettings, error) {
	var p settingsUpdatePayload
	body := map[string]bool{"is_locked": locked}
	if err := c.do(ctx, "update settings", http.MethodPut, "/admin/site/settings", token, body, &p); err != nil {
		return nil, err
	}
	if p.Settings.IsLocked == nil {
		return nil, malformed("update settings", "missing settings.is_locked")
	}
	return &models.SiteSettings{IsLocked: *p.Settings.IsLocked}, nil
}

func (c *Client) ReplaceCategory(ctx context.Context, token, categoryID string, update models.MenuCategoryUpdate) error {
	var p mutationPayload
	path := "/admin/menu/" + url.PathEscape(categoryID)
	if err := c.do(ctx, "replace category", http.MethodPut, path, token, update, &p); err != nil {
		return err
	}
	return p.check("replace category")
}

func (c *Client) AddItem(ctx context.Context, token, categoryID string, input models.MenuItemInput) (*models.MenuItem, error) {
	var p mutationPayload
	path := "/admin/menu/" + url.PathEscape(categoryID) + "/items"
	if err := c.do(ctx, "add item", http.MethodPost, path, token, input, &p); err != nil {
		return nil, err
	}
	if err := p.check("add item"); err != nil {
		return nil, err
	}
	if p.Item == nil || !p.Item.HasID() {
		return nil, malformed("add item", "missing created item")
	}
	return p.Item, nil
}

func (c *Client) PatchItem(ctx context.Context, token, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	var p mutationPayload
	path := "/admin/menu/" + url.PathEscape(categoryID) + "/items/" + url.PathEscape(itemID)
	if err := c.do(ctx, "patch item", http.MethodPatch, path, token, patch, &p); err != nil {
		return nil, err
	}
	if err := p.check("patch item"); err != nil {
		return nil, err
	}
	return p.Item, nil
}

// DeleteItem removes the item addressed by ref, an item id or a
// positional index rendered as decimal.
func (c *Client) DeleteItem(ctx context.Context, token, categoryID, ref string) error {
	var p mutationPayload
	path := "/admin/menu/" + url.PathEscape(categoryID) + "/items/" + url.PathEscape(ref)
	if err := c.do(ctx, "delete item", http.MethodDelete, path, token, nil, &p); err != nil {
		return err
	}
	return p.check("delete item")
}

func (c *Client) menu(ctx context.Context, op, path, token string) ([]models.MenuCategory, error) {
	var menu []models.MenuCategory
	if err := c.do(ctx, op, http.MethodGet, path, token, nil, &menu); err != nil {
		return nil, err
	}
	for i := range menu {
		if menu[i].ID == "" {
			return nil, malformed(op, fmt.Sprintf("category %d has no id", i))
		}
		if menu[i].Items == nil {
			menu[i].Items = []models.MenuItem{}
		}
	}
	if menu == nil {
		menu = []models.MenuCategory{}
	}
	return menu, nil
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (*models.AuthResponse, error) {
	var p authPayload
	if err := c.do(ctx, op, http.MethodPost, path, "", body, &p); err != nil {
		return nil, err
	}
	if p.Success == nil {
		return nil, malformed(op, "missing success")
	}
	if *p.Success && p.SessionID == "" {
		return nil, malformed(op, "success without session_id")
	}
	return &models.AuthResponse{Success: *p.Success, Message: p.Message, SessionID: p.SessionID}, nil
}

func (c *Client) check(ctx context.Context, op, prefix, token string) (bool, error) {
	if token == "" {
		return false, &ValidationError{Field: "session_id", Message: "no session to check"}
	}
	var p checkPayload
	if err := c.do(ctx, op, http.MethodGet, prefix+url.PathEscape(token), "", nil, &p); err != nil {
		return false, err
	}
	if p.HasAccess == nil {
		return false, malformed(op, "missing hasAccess")
	}
	return *p.HasAccess, nil
}

func (p *mutationPayload) check(op string) error {
	if p.Success == nil {
		return malformed(op, "missing success")
	}
	if !*p.Success {
		return &StatusError{StatusCode: http.StatusOK, Message: p.Message}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("Request failed")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	event := c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start))
	if token != "" {
		event = event.Str("token", logger.TokenHint(token))
	}
	event.Msg("API call")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if token == "" {
			return statusError(resp.StatusCode, raw)
		}
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return statusError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: errors.Join(ErrMalformedResponse, err)}
	}
	return nil
}

func statusError(code int, raw []byte) error {
	var body models.ErrorResponse
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: code, Code: body.Error, Message: msg}
}

func malformed(op, detail string) error {
	return &TransportError{Op: op, Err: fmt.Errorf("%w: %s", ErrMalformedResponse, detail)}
}
