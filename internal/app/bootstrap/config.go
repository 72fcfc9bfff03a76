// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratatools/internal/app/store/cache"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATATOOLS"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, redis_addr, etc.
//   - Environment variables: STRATATOOLS_MONGO_URI, STRATATOOLS_REDIS_ADDR, etc.
//   - Command-line flags: --mongo_uri, --redis_addr, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratatools", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Catalog cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the catalog cache (empty disables caching)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "catalog_cache_ttl", Default: "5m", Desc: "Catalog snapshot lifetime in Redis"},

	// Admin gate
	{Name: "admin_key", Default: "", Desc: "Admin bearer key (leave empty to use admin_key_hash)"},
	{Name: "admin_key_hash", Default: "", Desc: "bcrypt hash of the admin bearer key"},

	// Catalog queries
	{Name: "default_page_size", Default: 60, Desc: "Default page size for tool listings"},
	{Name: "similar_limit", Default: 4, Desc: "Max similar tools returned"},

	// Background jobs
	{Name: "submission_retention", Default: "2160h", Desc: "Age after which decided submissions are archived (0 disables)"},

	{Name: "seed_file", Default: "", Desc: "YAML seed file applied to an empty catalog"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, environment variables (WAFFLE_* for core, STRATATOOLS_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Catalog cache
		RedisAddr:       appValues.String("redis_addr"),
		RedisPassword:   appValues.String("redis_password"),
		RedisDB:         appValues.Int("redis_db"),
		CatalogCacheTTL: appValues.Duration("catalog_cache_ttl", cache.DefaultTTL),

		// Admin gate
		AdminKey:     appValues.String("admin_key"),
		AdminKeyHash: appValues.String("admin_key_hash"),

		DefaultPageSize: appValues.Int("default_page_size"),
		SimilarLimit:    appValues.Int("similar_limit"),

		SubmissionRetention: appValues.Duration("submission_retention", 90*24*time.Hour),

		SeedFile: appValues.String("seed_file"),

		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.DefaultPageSize < 1 {
		return errors.New("default_page_size must be at least 1")
	}
	if appCfg.SimilarLimit < 0 {
		return errors.New("similar_limit must not be negative")
	}
	if appCfg.SubmissionRetention < 0 {
		return errors.New("submission_retention must not be negative")
	}
	if appCfg.RedisAddr != "" && appCfg.CatalogCacheTTL <= 0 {
		return errors.New("catalog_cache_ttl must be positive when redis_addr is set")
	}

	switch appCfg.AuditLogAdmin {
	case "", auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log_admin must be one of all, db, log, off (got %q)", appCfg.AuditLogAdmin)
	}

	if appCfg.AdminKey == "" && appCfg.AdminKeyHash == "" {
		logger.Warn("no admin key configured; admin routes will reject every request")
	}

	return nil
}
