// Package testserver runs the real API router over in-memory storage for
// tests. It records every request and can force failures per route.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"embruns/internal/db"
	"embruns/internal/models"
	"embruns/internal/router"
	"embruns/internal/services"
	"embruns/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	AccessCode    = "2108"
	AdminPassword = "s3cret"
)

// Abort makes a faulted route drop the connection instead of answering.
const Abort = -1

type Config struct {
	Locked  bool
	Menu    []models.MenuCategory
	Options *router.Options
}

type Call struct {
	Method string
	Path   string
}

type Server struct {
	*httptest.Server

	Auth     *services.AuthService
	Site     *services.SiteService
	Menu     *services.MenuService
	Sessions *store.MemorySessionRepository

	mu     sync.Mutex
	calls  []Call
	faults map[Call]int
}

func New(t testing.TB, cfg Config) *Server {
	t.Helper()

	codeHash, err := services.HashSecret(AccessCode, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash access code: %v", err)
	}
	passHash, err := services.HashSecret(AdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}

	menu := cfg.Menu
	if menu == nil {
		menu = db.SeedMenu()
	}
	menuRepo := store.NewMemoryMenuRepository()
	if err := menuRepo.Seed(context.Background(), menu); err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	logger := zerolog.Nop()
	sessions := store.NewMemorySessionRepository()
	auth := services.NewAuthService("test-secret", time.Hour, sessions, logger)
	site := services.NewSiteService(store.NewMemorySettingsRepository(), cfg.Locked, db.RestaurantInfo(), logger)
	svc := router.Services{
		Auth:   auth,
		Access: services.NewAccessService(codeHash, passHash, site, auth, logger),
		Site:   site,
		Menu:   services.NewMenuService(menuRepo, logger),
	}

	opts := router.Options{GlobalRate: rate.Inf, GlobalBurst: 1, AuthRate: rate.Inf, AuthBurst: 1}
	if cfg.Options != nil {
		opts = *cfg.Options
	}

	s := &Server{
		Auth:     auth,
		Site:     site,
		Menu:     svc.Menu,
		Sessions: sessions,
		faults:   make(map[Call]int),
	}
	api := router.Handler(router.SetupRouter(svc, opts, logger))
	s.Server = httptest.NewServer(s.intercept(api))
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL clients should use.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

// Fail makes method+path answer with status, or drop the connection when
// status is Abort. Path is the full request path, e.g. "/api/site/settings".
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[Call{Method: method, Path: path}] = status
}

func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[Call]int)
}

// Calls returns every request received so far, in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts requests matching method+path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// IssueToken creates a session directly, bypassing login.
func (s *Server) IssueToken(t testing.TB, role models.SessionRole) string {
	t.Helper()
	token, _, err := s.Auth.IssueSession(context.Background(), role, services.SessionInfo{})
	if err != nil {
		t.Fatalf("issue %s session: %v", role, err)
	}
	return token
}

// AdminMenu reads the server-side menu, hidden categories included.
func (s *Server) AdminMenu(t testing.TB) []models.MenuCategory {
	t.Helper()
	menu, err := s.Menu.AdminMenu(context.Background())
	if err != nil {
		t.Fatalf("read menu: %v", err)
	}
	return menu
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		status, faulted := s.faults[call]
		s.mu.Unlock()

		if !faulted {
			next.ServeHTTP(w, r)
			return
		}
		if status == Abort {
			panic(http.ErrAbortHandler)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"injected","message":"injected failure"}`))
	})
}
