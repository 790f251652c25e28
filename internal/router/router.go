package router

import (
	"net/http"
	"time"

	"embruns/internal/handlers"
	"embruns/internal/middleware"
	"embruns/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Services bundles what the router wires into handlers.
type Services struct {
	Auth   *services.AuthService
	Access *services.AccessService
	Site   *services.SiteService
	Menu   *services.MenuService
}

type Options struct {
	// GlobalRate and GlobalBurst bound total request throughput.
	GlobalRate  rate.Limit
	GlobalBurst int
	// AuthRate and AuthBurst bound credential attempts per client address.
	AuthRate  rate.Limit
	AuthBurst int
}

func DefaultOptions() Options {
	return Options{
		GlobalRate:  rate.Limit(50),
		GlobalBurst: 100,
		AuthRate:    rate.Every(2 * time.Second),
		AuthBurst:   5,
	}
}

func SetupRouter(svc Services, opts Options, logger zerolog.Logger) *mux.Router {
	publicHandler := handlers.NewPublicHandler(svc.Site, svc.Menu, logger)
	accessHandler := handlers.NewAccessHandler(svc.Access, logger)
	adminHandler := handlers.NewAdminHandler(svc.Access, svc.Auth, svc.Site, svc.Menu, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(opts.GlobalRate, opts.GlobalBurst)
	credentialLimiter := middleware.NewKeyedRateLimiter(opts.AuthRate, opts.AuthBurst, 10*time.Minute)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", publicHandler.Health).Methods("GET")
	api.HandleFunc("/restaurant/info", publicHandler.GetRestaurantInfo).Methods("GET")
	api.HandleFunc("/menu", publicHandler.GetMenu).Methods("GET")
	api.HandleFunc("/site/settings", publicHandler.GetSiteSettings).Methods("GET")

	access := api.PathPrefix("/access").Subrouter()
	access.HandleFunc("/check/{session_id}", accessHandler.Check).Methods("GET")

	verify := access.PathPrefix("/verify").Subrouter()
	verify.Use(credentialLimiter.Middleware())
	verify.Use(middleware.RequestValidation())
	verify.HandleFunc("", accessHandler.Verify).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/check/{session_id}", adminHandler.Check).Methods("GET")

	login := admin.PathPrefix("/login").Subrouter()
	login.Use(credentialLimiter.Middleware())
	login.Use(middleware.RequestValidation())
	login.HandleFunc("", adminHandler.Login).Methods("POST")

	protected := admin.PathPrefix("").Subrouter()
	protected.Use(middleware.AdminAuthentication(svc.Auth, logger))
	protected.Use(middleware.RequestValidation())
	protected.HandleFunc("/logout", adminHandler.Logout).Methods("POST")
	protected.HandleFunc("/site/settings", adminHandler.UpdateSiteSettings).Methods("PUT")
	protected.HandleFunc("/menu", adminHandler.GetMenu).Methods("GET")
	protected.HandleFunc("/menu/{category_id}", adminHandler.ReplaceCategory).Methods("PUT")
	protected.HandleFunc("/menu/{category_id}/items", adminHandler.AddItem).Methods("POST")
	protected.HandleFunc("/menu/{category_id}/items/{item_ref}", adminHandler.PatchItem).Methods("PATCH")
	protected.HandleFunc("/menu/{category_id}/items/{item_ref}", adminHandler.DeleteItem).Methods("DELETE")

	return r
}

// Handler puts CORS in front of the router so preflight requests are
// answered before method matching rejects them.
func Handler(r *mux.Router) http.Handler {
	return middleware.CORS()(r)
}
