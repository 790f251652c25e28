package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"embruns/internal/client/api"
	"embruns/internal/models"
	"embruns/internal/testserver"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *api.Client {
	return api.NewClient(url, nil, zerolog.Nop())
}

func TestPublicCalls(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	c := newClient(srv.APIURL())
	ctx := context.Background()

	info, err := c.RestaurantInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Les Embruns", info.Name)

	settings, err := c.SiteSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.IsLocked)

	menu, err := c.Menu(ctx)
	require.NoError(t, err)
	assert.Len(t, menu, 3)
}

func TestVerifyAndCheckAccess(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	c := newClient(srv.APIURL())
	ctx := context.Background()

	resp, err := c.VerifyAccessCode(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid access code", resp.Message)

	resp, err = c.VerifyAccessCode(ctx, testserver.AccessCode)
	require.NoError(t, err)
	require.True(t, resp.Success)

	ok, err := c.CheckAccess(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckAdmin(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CheckAccess(ctx, "")
	assert.True(t, api.IsValidation(err))
}

func TestAdminCalls(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	c := newClient(srv.APIURL())
	ctx := context.Background()

	login, err := c.AdminLogin(ctx, testserver.AdminPassword)
	require.NoError(t, err)
	require.True(t, login.Success)
	token := login.SessionID

	settings, err := c.UpdateSiteSettings(ctx, token, false)
	require.NoError(t, err)
	assert.False(t, settings.IsLocked)

	item, err := c.AddItem(ctx, token, "desserts", models.MenuItemInput{Name: "Kouign-amann", Description: "Beurre salé", Price: "8€"})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)

	patched, err := c.PatchItem(ctx, token, "desserts", item.ID, models.MenuItemPatch{Price: strPtr("9€")})
	require.NoError(t, err)
	assert.Equal(t, "9€", patched.Price)

	require.NoError(t, c.DeleteItem(ctx, token, "desserts", item.ID))

	menu, err := c.AdminMenu(ctx, token)
	require.NoError(t, err)
	desserts := menu[2]
	assert.Len(t, desserts.Items, 2)

	desserts.Items[0].Name = "Tarte"
	require.NoError(t, c.ReplaceCategory(ctx, token, "desserts", models.MenuCategoryUpdate{Name: desserts.Name, Items: desserts.Items}))
	assert.Equal(t, "Tarte", srv.AdminMenu(t)[2].Items[0].Name)

	err = c.DeleteItem(ctx, token, "desserts", "42")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "item_not_found", se.Code)

	require.NoError(t, c.AdminLogout(ctx, token))
	_, err = c.AdminMenu(ctx, token)
	assert.True(t, api.IsUnauthorized(err))
}

func TestUnauthorizedOnEveryAuthenticatedCall(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	c := newClient(srv.APIURL())
	ctx := context.Background()
	const token = "expired-or-forged"

	calls := map[string]func() error{
		"menu": func() error { _, err := c.AdminMenu(ctx, token); return err },
		"settings": func() error {
			_, err := c.UpdateSiteSettings(ctx, token, true)
			return err
		},
		"replace": func() error {
			return c.ReplaceCategory(ctx, token, "plats", models.MenuCategoryUpdate{Name: "Plats"})
		},
		"add": func() error {
			_, err := c.AddItem(ctx, token, "plats", models.MenuItemInput{Name: "a", Description: "b", Price: "c"})
			return err
		},
		"patch": func() error {
			_, err := c.PatchItem(ctx, token, "plats", "x", models.MenuItemPatch{Name: strPtr("a")})
			return err
		},
		"delete": func() error { return c.DeleteItem(ctx, token, "plats", "0") },
		"logout": func() error { return c.AdminLogout(ctx, token) },
	}
	for name, call := range calls {
		err := call()
		assert.ErrorIs(t, err, api.ErrUnauthorized, name)
	}
	assert.Len(t, srv.AdminMenu(t)[1].Items, 3)
}

func TestTransportFailure(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	url := srv.APIURL()
	srv.Close()

	_, err := newClient(url).SiteSettings(context.Background())
	assert.True(t, api.IsTransport(err))
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *api.Client) error
	}{
		{"settings without is_locked", `{}`, func(c *api.Client) error {
			_, err := c.SiteSettings(context.Background())
			return err
		}},
		{"verify success without session", `{"success":true,"message":"ok"}`, func(c *api.Client) error {
			_, err := c.VerifyAccessCode(context.Background(), "2108")
			return err
		}},
		{"login without success flag", `{"session_id":"x"}`, func(c *api.Client) error {
			_, err := c.AdminLogin(context.Background(), "pw")
			return err
		}},
		{"check without hasAccess", `{"has_access":true}`, func(c *api.Client) error {
			_, err := c.CheckAccess(context.Background(), "tok")
			return err
		}},
		{"menu category without id", `[{"name":"Plats","items":[]}]`, func(c *api.Client) error {
			_, err := c.Menu(context.Background())
			return err
		}},
		{"not json", `<html>`, func(c *api.Client) error {
			_, err := c.RestaurantInfo(context.Background())
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := tt.call(newClient(srv.URL))
			assert.ErrorIs(t, err, api.ErrMalformedResponse)
			assert.True(t, api.IsTransport(err))
		})
	}
}

func TestMenuNormalizesMissingItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"plats","name":"Plats","order":1,"items":null}]`))
	}))
	defer srv.Close()

	menu, err := newClient(srv.URL).Menu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.NotNil(t, menu[0].Items)
	assert.Empty(t, menu[0].Items)
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	srv.Fail(http.MethodPost, "/api/access/verify", http.StatusTooManyRequests)

	_, err := newClient(srv.APIURL()).VerifyAccessCode(context.Background(), "2108")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "injected failure", se.Message)
}

func strPtr(s string) *string {
	return &s
}
