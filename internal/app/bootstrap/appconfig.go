// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig carries the
// framework-level settings (ports, TLS, logging, CORS, body limits); AppConfig
// carries everything specific to the tools directory.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Redis catalog snapshot cache. Empty RedisAddr disables the cache.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration // default: 5m

	// Admin gate. AdminKeyHash (bcrypt) wins over AdminKey when both are set;
	// with neither set every admin route answers 401.
	AdminKey     string
	AdminKeyHash string

	// Catalog query defaults
	DefaultPageSize int // page size when a request omits page_size (default: 60)
	SimilarLimit    int // max results for /api/tools/{id}/similar (default: 4)

	// Decided submissions older than this are archived; 0 disables the job.
	SubmissionRetention time.Duration

	// Optional YAML seed file applied to an empty catalog at startup.
	SeedFile string

	// Audit logging: "all" (MongoDB + zap), "db", "log", or "off"
	AuditLogAdmin string
}
