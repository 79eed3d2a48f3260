// Package server assembles the GreenStamp HTTP API: it opens the stores,
// migrates and seeds the schema, and mounts every resource router under
// /api/v1.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/activity"
	"github.com/greenstamp/greenstamp-api/pkg/audit"
	"github.com/greenstamp/greenstamp-api/pkg/cache"
	"github.com/greenstamp/greenstamp-api/pkg/calculation"
	"github.com/greenstamp/greenstamp-api/pkg/factors"
	"github.com/greenstamp/greenstamp-api/pkg/ha"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
	"github.com/greenstamp/greenstamp-api/pkg/metrics"
	"github.com/greenstamp/greenstamp-api/pkg/owners"
	"github.com/greenstamp/greenstamp-api/pkg/passport"
	"github.com/greenstamp/greenstamp-api/pkg/reporting"
)

// APIPrefix is where the resource routers are mounted.
const APIPrefix = "/api/v1"

// Server owns the stores, services and router of one API process.
type Server struct {
	cfg    *Config
	db     *gorm.DB
	logger *slog.Logger

	identity identity.Resolver
	metrics  *metrics.Collectors
	cache    *cache.Manager

	factorStore *factors.FactorStore
	resolver    *factors.Resolver
	ledger      *activity.Ledger
	activities  *activity.Service
	owners      *owners.Store
	aggregator  *reporting.Aggregator
	passportDB  *passport.Store
	passports   *passport.Service
	auditStore  *audit.Store

	startedAt time.Time
	ready     atomic.Bool
}

// New builds a Server over db. Nothing touches the database until Init.
func New(cfg *Config, db *gorm.DB, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	resolverID, err := identity.NewResolver(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		identity:  resolverID,
		metrics:   metrics.New(),
		startedAt: time.Now(),
	}
	s.cache = cache.NewManager(cfg.Cache, s.metrics)

	s.factorStore = factors.NewFactorStore(db)
	s.resolver = factors.NewResolver(s.factorStore, cfg.Resolver, factors.WithLookupObserver(s.metrics))
	calc := calculation.NewCalculator(s.resolver)

	s.ledger = activity.NewLedger(db)
	s.activities = activity.NewService(calc, s.ledger,
		activity.WithObserver(s.metrics),
		activity.WithLogger(logger))

	s.owners = owners.NewStore(db)
	s.aggregator = reporting.NewAggregator(s.ledger, s.owners,
		reporting.WithPolicy(cfg.Policy),
		reporting.WithObserver(s.metrics),
		reporting.WithLogger(logger))

	s.passportDB = passport.NewStore(db)
	s.passports = passport.NewService(s.passportDB, calc)
	s.auditStore = audit.NewStore(db)

	return s, nil
}

// Init migrates the schema under the migration lock and seeds the default
// emission factors. The server reports ready once Init succeeds.
func (s *Server) Init(ctx context.Context) error {
	locker := ha.NewMigrationLocker(s.db, s.cfg.HA)
	err := ha.Migrate(ctx, locker,
		s.factorStore.AutoMigrate,
		s.ledger.AutoMigrate,
		s.owners.AutoMigrate,
		s.passportDB.AutoMigrate,
		s.auditStore.AutoMigrate,
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if s.cfg.Resolver.SeedDefaults {
		defaults, err := factors.DefaultFactors()
		if err != nil {
			return fmt.Errorf("load default factors: %w", err)
		}
		created, err := factors.Seed(ctx, s.factorStore, defaults, s.logger)
		if err != nil {
			return fmt.Errorf("seed factors: %w", err)
		}
		s.logger.Info("emission factors seeded", "created", created, "defaults", len(defaults))
	}

	s.ready.Store(true)
	return nil
}

// Router builds the HTTP handler.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", identity.HeaderUser, identity.HeaderGroup},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthHandler)
	r.Get("/livez", s.healthHandler)
	r.Get("/readyz", s.readyHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	requireAdmin := identity.RequireGroup(s.cfg.Identity.AdminGroup)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(identity.Middleware(s.identity))
		if s.cfg.Audit != nil && s.cfg.Audit.Enabled {
			r.Use(audit.AuditMiddleware(s.auditStore, s.cfg.Audit, s.logger))
			s.logger.Info("audit middleware enabled",
				"recordDenied", s.cfg.Audit.RecordDenied,
				"retentionDays", s.cfg.Audit.RetentionDays())
		}

		r.Mount("/activities", activity.Router(s.activities, s.logger))
		r.Mount("/reports", reporting.Router(s.aggregator, s.logger))
		r.Mount("/factors", factors.Router(s.factorStore, s.resolver, factors.RouterOptions{
			RequireAdmin: requireAdmin,
			ListCache:    s.cache.ListingMiddleware(),
			ResolveCache: s.cache.ResolveMiddleware(),
			OnChange:     s.cache.InvalidateFactors,
			Logger:       s.logger,
		}))
		r.Mount("/passports", passport.Router(s.passports, s.logger))
		r.Mount("/owners", owners.Router(s.owners, requireAdmin, s.logger))
		r.Mount("/audit", audit.Router(s.auditStore, s.logger))
	})

	return r
}

// Run serves HTTP on the configured address and runs the audit retention
// worker until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Audit != nil && s.cfg.Audit.Enabled {
		worker := audit.NewRetentionWorker(s.auditStore, s.cfg.Audit,
			audit.WithPruneObserver(s.metrics),
			audit.WithRetentionLogger(s.logger),
		)
		go worker.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("greenstamp server ready", "listen", s.cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("greenstamp server stopped")
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// readyHandler checks database connectivity and that Init completed.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	allReady := true

	dbStatus := map[string]string{"status": "up"}
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		dbStatus["status"] = "down"
		dbStatus["error"] = err.Error()
		allReady = false
	}

	initStatus := map[string]string{"status": "complete"}
	if !s.ready.Load() {
		initStatus["status"] = "pending"
		allReady = false
	}

	status, code := "ready", http.StatusOK
	if !allReady {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": map[string]any{
			"database": dbStatus,
			"init":     initStatus,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
