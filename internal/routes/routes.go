package routes

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/northwind/salesportal/internal/app"
	"github.com/northwind/salesportal/internal/handler"
	"github.com/northwind/salesportal/internal/middleware"
	"github.com/northwind/salesportal/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	cfg := app.Cfg

	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	content := handler.NewContentHandler(app.ContentService)
	upload := handler.NewUploadHandler(app.ContentService)
	contact := handler.NewContactHandler(app.EmailService)

	mux := http.NewServeMux()

	// Route middleware
	loginLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	contactLimiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow)
	requireAuth := middleware.RequireAuth(app.AuthService)
	requireAdmin := middleware.RequireRole(model.RoleAdmin)
	route := func(path string, h http.HandlerFunc, mws ...func(http.HandlerFunc) http.HandlerFunc) {
		mws = append([]func(http.HandlerFunc) http.HandlerFunc{middleware.Instrument(path)}, mws...)
		mux.HandleFunc(path, middleware.ChainFunc(h, mws...))
	}

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", handler.Health)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Auth (rate limited)
	route("/api/auth", auth.Login,
		middleware.AllowMethods(http.MethodPost),
		middleware.RateLimit(loginLimiter),
	)

	// Contact form (rate limited)
	route("/api/contact", contact.Submit,
		middleware.AllowMethods(http.MethodPost),
		middleware.RateLimit(contactLimiter),
	)

	// ============================================================================
	// PROTECTED ROUTES (bearer session)
	// ============================================================================

	route("/api/auth/revoke", auth.Revoke,
		middleware.AllowMethods(http.MethodPost),
		requireAuth,
	)

	// Writes are checked per action inside the handler.
	route("/api/content", content.Handle,
		middleware.AllowMethods(http.MethodGet, http.MethodPost),
		requireAuth,
	)

	route("/api/upload", upload.Issue,
		middleware.AllowMethods(http.MethodPost),
		requireAuth,
		requireAdmin,
	)

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	global := []func(http.Handler) http.Handler{chimw.RequestID}
	if cfg.TrustProxyHeaders {
		// Proxy headers are client-controlled unless a proxy overwrites them.
		global = append(global, chimw.RealIP)
	}
	global = append(global,
		middleware.RequestLogging,
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}),
		chimw.Timeout(cfg.RequestTimeout),
	)
	return middleware.Chain(mux, global...)
}
