package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"embruns/internal/models"
	"embruns/internal/router"
	"embruns/internal/testserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func request(t *testing.T, method, url, token, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHealth(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	resp, body := request(t, http.MethodGet, srv.APIURL()+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "healthy"}, decode[map[string]string](t, body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestPublicEndpoints(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	resp, body := request(t, http.MethodGet, srv.APIURL()+"/restaurant/info", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[models.RestaurantInfo](t, body)
	assert.Equal(t, "Les Embruns", info.Name)
	assert.NotEmpty(t, info.Contact.Hours)

	resp, body = request(t, http.MethodGet, srv.APIURL()+"/site/settings", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"is_locked":true}`, string(body))

	resp, body = request(t, http.MethodGet, srv.APIURL()+"/menu", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	menu := decode[[]models.MenuCategory](t, body)
	require.Len(t, menu, 3)
	assert.Equal(t, []string{"entrees", "plats", "desserts"}, []string{menu[0].ID, menu[1].ID, menu[2].ID})
	assert.NotContains(t, string(body), `"id":""`)
}

func TestAccessVerifyAndCheck(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	resp, body := request(t, http.MethodPost, srv.APIURL()+"/access/verify", "", `{"code":"0000"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rejected := decode[models.AuthResponse](t, body)
	assert.False(t, rejected.Success)
	assert.Equal(t, "invalid access code", rejected.Message)
	assert.Empty(t, rejected.SessionID)

	resp, body = request(t, http.MethodPost, srv.APIURL()+"/access/verify", "", `{"code":"2108"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	granted := decode[models.AuthResponse](t, body)
	require.True(t, granted.Success)
	require.NotEmpty(t, granted.SessionID)

	_, body = request(t, http.MethodGet, srv.APIURL()+"/access/check/"+granted.SessionID, "", "")
	assert.JSONEq(t, `{"hasAccess":true}`, string(body))

	_, body = request(t, http.MethodGet, srv.APIURL()+"/access/check/garbage", "", "")
	assert.JSONEq(t, `{"hasAccess":false}`, string(body))
}

func TestSessionNamespacesAreSeparate(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	_, body := request(t, http.MethodPost, srv.APIURL()+"/access/verify", "", `{"code":"2108"}`)
	visitor := decode[models.AuthResponse](t, body).SessionID

	_, body = request(t, http.MethodPost, srv.APIURL()+"/admin/login", "", `{"password":"s3cret"}`)
	admin := decode[models.AuthResponse](t, body).SessionID

	_, body = request(t, http.MethodGet, srv.APIURL()+"/admin/check/"+visitor, "", "")
	assert.JSONEq(t, `{"hasAccess":false}`, string(body))
	_, body = request(t, http.MethodGet, srv.APIURL()+"/access/check/"+admin, "", "")
	assert.JSONEq(t, `{"hasAccess":false}`, string(body))
	_, body = request(t, http.MethodGet, srv.APIURL()+"/admin/check/"+admin, "", "")
	assert.JSONEq(t, `{"hasAccess":true}`, string(body))

	resp, _ := request(t, http.MethodGet, srv.APIURL()+"/admin/menu", visitor, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLogin(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	_, body := request(t, http.MethodPost, srv.APIURL()+"/admin/login", "", `{"password":"nope"}`)
	rejected := decode[models.AuthResponse](t, body)
	assert.False(t, rejected.Success)
	assert.Equal(t, "incorrect password", rejected.Message)

	resp, body := request(t, http.MethodPost, srv.APIURL()+"/admin/login", "", `{"password":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decode[models.ErrorResponse](t, body).Error)

	req, err := http.NewRequest(http.MethodPost, srv.APIURL()+"/admin/login", strings.NewReader(`{"password":"s3cret"}`))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing content type")
}

func TestAdminLogoutRevokesSession(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	token := srv.IssueToken(t, models.RoleAdmin)

	resp, _ := request(t, http.MethodPost, srv.APIURL()+"/admin/logout", token, `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, http.MethodGet, srv.APIURL()+"/admin/menu", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminSiteSettings(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	token := srv.IssueToken(t, models.RoleAdmin)

	resp, _ := request(t, http.MethodPut, srv.APIURL()+"/admin/site/settings", "", `{"is_locked":false}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := request(t, http.MethodPut, srv.APIURL()+"/admin/site/settings", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = request(t, http.MethodPut, srv.APIURL()+"/admin/site/settings", token, `{"is_locked":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.SiteSettingsUpdateResponse](t, body)
	assert.True(t, updated.Success)
	assert.False(t, updated.Settings.IsLocked)

	_, body = request(t, http.MethodGet, srv.APIURL()+"/site/settings", "", "")
	assert.JSONEq(t, `{"is_locked":false}`, string(body))

	// an unlocked site hands out sessions for any code
	_, body = request(t, http.MethodPost, srv.APIURL()+"/access/verify", "", `{"code":""}`)
	assert.True(t, decode[models.AuthResponse](t, body).Success)
}

func TestAdminMenuMutations(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	token := srv.IssueToken(t, models.RoleAdmin)
	base := srv.APIURL() + "/admin/menu"

	resp, body := request(t, http.MethodPost, base+"/plats/items", token, `{"name":"Cotriade","description":"Soupe de poissons","price":"24€"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[models.MutationResponse](t, body)
	require.NotNil(t, created.Item)
	require.NotEmpty(t, created.Item.ID)

	resp, body = request(t, http.MethodPost, base+"/plats/items", token, `{"name":"Cotriade","description":"","price":"24€"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = request(t, http.MethodPatch, base+"/plats/items/"+created.Item.ID, token, `{"price":"26€"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "26€", decode[models.MutationResponse](t, body).Item.Price)

	resp, body = request(t, http.MethodPatch, base+"/plats/items/"+created.Item.ID, token, `{"description":""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	patched := decode[models.MutationResponse](t, body).Item
	assert.Empty(t, patched.Description)
	assert.Equal(t, "26€", patched.Price)

	resp, body = request(t, http.MethodPatch, base+"/plats/items/"+created.Item.ID, token, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, _ = request(t, http.MethodPatch, base+"/plats/items/unknown", token, `{"price":"1€"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = request(t, http.MethodDelete, base+"/plats/items/"+created.Item.ID, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, http.MethodDelete, base+"/plats/items/0", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, http.MethodDelete, base+"/plats/items/17", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "item_not_found", decode[models.ErrorResponse](t, body).Error)

	resp, body = request(t, http.MethodDelete, base+"/nope/items/0", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "category_not_found", decode[models.ErrorResponse](t, body).Error)

	menu := srv.AdminMenu(t)
	assert.Len(t, menu[1].Items, 2)
	assert.Equal(t, "Agneau de Pré-Salé", menu[1].Items[0].Name)
}

func TestReplaceCategoryHidesFromPublicMenu(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})
	token := srv.IssueToken(t, models.RoleAdmin)

	payload := `{"name":"Desserts","hidden":true,"items":[{"name":"Far breton","description":"Aux pruneaux","price":"9€"}]}`
	resp, body := request(t, http.MethodPut, srv.APIURL()+"/admin/menu/desserts", token, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = request(t, http.MethodGet, srv.APIURL()+"/menu", "", "")
	assert.Len(t, decode[[]models.MenuCategory](t, body), 2)

	_, body = request(t, http.MethodGet, srv.APIURL()+"/admin/menu", token, "")
	admin := decode[[]models.MenuCategory](t, body)
	require.Len(t, admin, 3)
	assert.True(t, admin[2].Hidden)
	assert.Equal(t, "Far breton", admin[2].Items[0].Name)

	resp, _ = request(t, http.MethodPut, srv.APIURL()+"/admin/menu/unknown", token, `{"name":"x","items":[]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = request(t, http.MethodPut, srv.APIURL()+"/admin/menu/desserts", token, `{"name":"","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCredentialEndpointsAreThrottled(t *testing.T) {
	opts := router.Options{GlobalRate: rate.Inf, GlobalBurst: 1, AuthRate: rate.Every(time.Hour), AuthBurst: 2}
	srv := testserver.New(t, testserver.Config{Locked: true, Options: &opts})

	for i := 0; i < 2; i++ {
		resp, _ := request(t, http.MethodPost, srv.APIURL()+"/admin/login", "", `{"password":"guess"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := request(t, http.MethodPost, srv.APIURL()+"/access/verify", "", `{"code":"1111"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", decode[models.ErrorResponse](t, body).Error)

	resp, _ = request(t, http.MethodGet, srv.APIURL()+"/menu", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not throttled per client")
}

func TestPreflightReachesCORS(t *testing.T) {
	srv := testserver.New(t, testserver.Config{Locked: true})

	req, err := http.NewRequest(http.MethodOptions, srv.APIURL()+"/admin/menu/plats/items/0", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
