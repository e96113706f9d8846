// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minSessionKeyLen is enforced outside dev.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for the agents service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: DOGSTACK_MONGO_URI, DOGSTACK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "dogstack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Cookie and token signing key (must be strong in production)"},
	{Name: "session_name", Default: "dogstack-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "token_max_age", Default: "720h", Desc: "Access token lifetime (e.g., 24h, 720h)"},

	// Inactive session sweeper
	{Name: "session_idle_timeout", Default: "0s", Desc: "Close sessions idle this long (0 disables the sweeper)"},
	{Name: "session_sweep_interval", Default: "1m", Desc: "How often the sweeper runs"},

	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt cost for stored password hashes"},

	// Audit trail: all (MongoDB + log), db, log, off
	{Name: "audit_log_auth", Default: "all", Desc: "Audit log in/out and password events: all, db, log, off"},
	{Name: "audit_log_admin", Default: "all", Desc: "Audit signups and agent removals: all, db, log, off"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for a whole service call"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// DOGSTACK_* environment variables and flags, in that order of
// increasing precedence.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DOGSTACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		TokenMaxAge:      appValues.Duration("token_max_age", 720*time.Hour),

		SessionIdleTimeout:   appValues.Duration("session_idle_timeout", 0),
		SessionSweepInterval: appValues.Duration("session_sweep_interval", time.Minute),

		BcryptCost: appValues.Int("bcrypt_cost"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked before connecting. Outside dev the
// session key must be long enough to sign tokens.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if coreCfg != nil && coreCfg.Env != "dev" && len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters outside dev", minSessionKeyLen)
	}
	if appCfg.TokenMaxAge <= 0 {
		return fmt.Errorf("token_max_age must be positive")
	}

	if appCfg.BcryptCost != 0 && (appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	for key, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if mode != "" && !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, mode)
		}
	}

	if appCfg.SessionIdleTimeout < 0 {
		return fmt.Errorf("session_idle_timeout must not be negative")
	}
	if appCfg.SessionIdleTimeout > 0 && appCfg.SessionSweepInterval <= 0 {
		return fmt.Errorf("session_sweep_interval must be positive when the sweeper is enabled")
	}
	return nil
}
