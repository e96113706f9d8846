// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything
// specific to the agents service lives here and is passed to each
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie and access tokens
	SessionKey    string        // Secret for signing cookies and tokens (32+ chars)
	SessionName   string        // Cookie name (default: dogstack-session)
	SessionDomain string        // Cookie domain (blank means current host)
	TokenMaxAge   time.Duration // Lifetime of issued access tokens

	// Sessions idle longer than this are closed by the sweeper. Zero disables it.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	BcryptCost int

	// Audit trail destinations per category: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// Per-call deadlines (see system/timeouts)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
