// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	admintoolsfeature "github.com/dalemusser/stratatools/internal/app/features/admintools"
	auditlogfeature "github.com/dalemusser/stratatools/internal/app/features/auditlog"
	collectionsfeature "github.com/dalemusser/stratatools/internal/app/features/collections"
	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratatools/internal/app/features/health"
	jobsfeature "github.com/dalemusser/stratatools/internal/app/features/jobs"
	newsletterfeature "github.com/dalemusser/stratatools/internal/app/features/newsletter"
	statsfeature "github.com/dalemusser/stratatools/internal/app/features/stats"
	submissionsfeature "github.com/dalemusser/stratatools/internal/app/features/submissions"
	toolsfeature "github.com/dalemusser/stratatools/internal/app/features/tools"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/store/cache"
	collectionstore "github.com/dalemusser/stratatools/internal/app/store/collections"
	newsletterstore "github.com/dalemusser/stratatools/internal/app/store/newsletter"
	submissionstore "github.com/dalemusser/stratatools/internal/app/store/submissions"
	toolstore "github.com/dalemusser/stratatools/internal/app/store/tools"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/authz"
	"github.com/dalemusser/stratatools/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/moderation"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed.
//
// Layout:
//   - /api/tools, /api/categories, /api/collections, /api/submissions,
//     /api/newsletter: public JSON API
//   - /api/admin/*: behind the bearer-key admin gate
//   - /health, /ready, /readyz, /livez, /metrics: operations
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	m := deps.Metrics

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Audit store and logger for admin actions.
	auditStore := audit.New(db)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Admin: appCfg.AuditLogAdmin,
	})

	// Stores
	tools := toolstore.New(db)
	collections := collectionstore.New(db)
	submissions := submissionstore.New(db)
	subscribers := newsletterstore.New(db)

	// Public catalog reads go through the Redis snapshot when one is configured.
	snapshot := cache.New(deps.Redis, tools, appCfg.CatalogCacheTTL, logger, m)
	engine := catalog.New(snapshot, appCfg.DefaultPageSize, appCfg.SimilarLimit)

	moderator := moderation.NewService(submissions, tools,
		moderation.WithSanitizer(htmlsanitize.StripTags))

	gate := authz.NewAPIKeyGate(appCfg.AdminKey, appCfg.AdminKeyHash)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers: X-Content-Type-Options, X-Frame-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Request duration by route pattern.
	r.Use(m.Middleware)

	// ─────────────────────────────────────────────────────────────────────────────
	// Operations
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.MongoClient, snapshot, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)
	r.Handle("/metrics", m.Handler())

	// ─────────────────────────────────────────────────────────────────────────────
	// Public API
	// ─────────────────────────────────────────────────────────────────────────────

	toolsHandler := toolsfeature.NewHandler(engine, tools, m, errLog, logger)
	r.Mount("/api/tools", toolsfeature.Routes(toolsHandler))
	r.Get("/api/categories", toolsHandler.Categories)

	collectionsHandler := collectionsfeature.NewHandler(collections, tools, auditLogger, errLog, logger)
	r.Mount("/api/collections", collectionsfeature.Routes(collectionsHandler))

	submissionsHandler := submissionsfeature.NewHandler(moderator, snapshot, auditLogger, m, errLog, logger)
	r.Mount("/api/submissions", submissionsfeature.Routes(submissionsHandler))

	newsletterHandler := newsletterfeature.NewHandler(subscribers, auditLogger, m, errLog, logger)
	r.Mount("/api/newsletter", newsletterfeature.Routes(newsletterHandler))

	// ─────────────────────────────────────────────────────────────────────────────
	// Admin API (bearer key)
	// ─────────────────────────────────────────────────────────────────────────────

	adminToolsHandler := admintoolsfeature.NewHandler(tools, collections, snapshot, auditLogger, m, appCfg.DefaultPageSize, errLog, logger)
	auditHandler := auditlogfeature.NewHandler(auditStore, errLog, logger)
	statsHandler := statsfeature.NewHandler(tools, submissions, collections, subscribers, errLog, logger)

	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(authz.RequireAdmin(gate, logger))

		ar.Get("/me", adminToolsHandler.Me)
		ar.Mount("/tools", admintoolsfeature.Routes(adminToolsHandler))
		ar.Mount("/import", admintoolsfeature.ImportRoutes(adminToolsHandler))
		ar.Mount("/submissions", submissionsfeature.AdminRoutes(submissionsHandler))
		ar.Mount("/collections", collectionsfeature.AdminRoutes(collectionsHandler))
		ar.Mount("/newsletter", newsletterfeature.AdminRoutes(newsletterHandler))
		ar.Mount("/audit", auditlogfeature.Routes(auditHandler))
		ar.Mount("/stats", statsfeature.Routes(statsHandler))
		if taskRunner != nil {
			ar.Mount("/jobs", jobsfeature.Routes(jobsfeature.NewHandler(taskRunner, errLog, logger)))
		}
	})

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	logger.Info("routes registered",
		zap.Bool("catalog_cache", snapshot.Enabled()),
		zap.Bool("admin_gate_configured", gate.Configured()))

	return r, nil
}
