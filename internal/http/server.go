package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/export"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/middleware/security"
	"finledger/internal/middleware/trace"
	"finledger/internal/services"
)

// Ledger is the session the handlers operate on.
type Ledger interface {
	Add(ctx context.Context, in services.Input) (core.Transaction, error)
	Clear(ctx context.Context) error
	Transactions(r ledger.DateRange) []core.Transaction
	History(r ledger.DateRange) []core.Transaction
	Report(r ledger.DateRange, goal decimal.NullDecimal) (ledger.Report, error)
	Count() int
	Backend() string
}

var _ Ledger = (*services.LedgerService)(nil)

type Server struct {
	http.Server
	ledger   Ledger
	exporter *export.Exporter
	logger   *log.Logger
	tracer   *trace.Middleware
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, l Ledger, exporter *export.Exporter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:   l,
		exporter: exporter,
		logger:   logger,
		tracer:   trace.NewMiddleware(logger, clientIP),
		now:      time.Now,
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.tracer.Middleware)
	api.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", s.handleClearTransactions).Methods(http.MethodDelete)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/export.{format:csv|xml}", s.handleExport).Methods(http.MethodGet)

	return r
}

// Metrics exposes the request counters kept by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
