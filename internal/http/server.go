package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/metrics"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Transactions *services.TransactionService
	Accounts     *services.AccountService
	Preferences  *services.PreferenceService

	// Database is checked by /readyz.
	Database Pinger

	// Metrics may be nil; /metrics then answers 404.
	Metrics *metrics.Metrics

	// RateLimiter may be nil to disable per-client limiting.
	RateLimiter *ratelimit.Limiter

	// Logger is attached to every request context. Defaults to slog.Default.
	Logger *applog.Logger
}

// Server is the JSON API server.
type Server struct {
	http.Server

	transactions *services.TransactionService
	accounts     *services.AccountService
	preferences  *services.PreferenceService
	database     Pinger
	metrics      *metrics.Metrics
	logger       *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	secureCookies bool
	now           func() time.Time
	started       time.Time
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr          string
	SecureCookies bool
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		transactions:     deps.Transactions,
		accounts:         deps.Accounts,
		preferences:      deps.Preferences,
		database:         deps.Database,
		metrics:          deps.Metrics,
		logger:           deps.Logger,
		rateLimiter:      deps.RateLimiter,
		securityDetector: security.NewDetector(),
		secureCookies:    cfg.SecureCookies,
		now:              time.Now,
		started:          time.Now(),
	}
	if s.logger == nil {
		s.logger = applog.FromContext(context.Background())
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, deps.Metrics)

	mux := http.NewServeMux()
	s.routes(mux)
	s.Handler = s.middleware(mux)

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Accounts
	mux.HandleFunc("POST /authentication/validate-username", s.handleValidateUsername)
	mux.HandleFunc("POST /authentication/validate-email", s.handleValidateEmail)
	mux.HandleFunc("POST /authentication/register", s.handleRegister)
	mux.HandleFunc("GET /authentication/activate/{uid}/{token}", s.handleActivate)
	mux.HandleFunc("POST /authentication/login", s.handleLogin)
	mux.HandleFunc("POST /authentication/logout", s.handleLogout)
	mux.HandleFunc("POST /authentication/request-reset-link", s.handleRequestResetLink)
	mux.HandleFunc("GET /authentication/set-new-password/{uid}/{token}", s.handleCheckResetLink)
	mux.HandleFunc("POST /authentication/set-new-password/{uid}/{token}", s.handleSetNewPassword)

	// Preferences
	mux.HandleFunc("GET /preferences", s.requireAuth(s.handleGetPreferences))
	mux.HandleFunc("PUT /preferences", s.requireAuth(s.handleSetPreferences))
	mux.HandleFunc("POST /preferences", s.requireAuth(s.handleSetPreferences))

	// Ledgers
	s.ledgerRoutes(mux, "/expenses", "categories", core.KindExpense)
	s.ledgerRoutes(mux, "/income", "sources", core.KindIncome)
}

func (s *Server) ledgerRoutes(mux *http.ServeMux, prefix, labels string, kind core.Kind) {
	h := &ledgerHandler{server: s, kind: kind}

	mux.HandleFunc("GET "+prefix, s.requireAuth(h.handleList))
	mux.HandleFunc("POST "+prefix, s.requireAuth(h.handleCreate))
	mux.HandleFunc("POST "+prefix+"/search", s.requireAuth(h.handleSearch))
	mux.HandleFunc("GET "+prefix+"/summary", s.requireAuth(h.handleSummary))
	mux.HandleFunc("GET "+prefix+"/stats", s.requireAuth(h.handleStats))
	mux.HandleFunc("GET "+prefix+"/export-csv", s.requireAuth(h.handleExportCSV))
	mux.HandleFunc("GET "+prefix+"/"+labels, s.requireAuth(h.handleLabels))
	mux.HandleFunc("GET "+prefix+"/{id}", s.requireAuth(h.handleGet))
	mux.HandleFunc("POST "+prefix+"/{id}", s.requireAuth(h.handleUpdate))
	mux.HandleFunc("PUT "+prefix+"/{id}", s.requireAuth(h.handleUpdate))
	mux.HandleFunc("DELETE "+prefix+"/{id}", s.requireAuth(h.handleDelete))
	mux.HandleFunc("POST "+prefix+"/{id}/delete", s.requireAuth(h.handleDelete))
}

// middleware wraps the mux, outermost first: request-scoped logger, tracing,
// security headers, suspicious request blocking, rate limiting. Nothing
// between tracing and the mux may replace the request.
func (s *Server) middleware(next http.Handler) http.Handler {
	handler := next
	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			TooManyRequestsError("Rate limit exceeded. Please try again later.").Write(w)
		})(handler)
	}
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = applog.ComponentMiddleware(applog.ComponentHTTP)(handler)
	return applog.Middleware(s.logger)(handler)
}
