// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	auditfeature "github.com/evaluation-alex/dogstack-agents/internal/app/features/auditlog"
	healthfeature "github.com/evaluation-alex/dogstack-agents/internal/app/features/health"
	logoutfeature "github.com/evaluation-alex/dogstack-agents/internal/app/features/logout"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/rest"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It builds the service App over the Mongo stores
// and exposes it over REST next to /health, /logout and /audit.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.TokenMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	tokens := auth.NewTokenCodec([]byte(appCfg.SessionKey), appCfg.TokenMaxAge)

	stores := MongoStores(deps.MongoDatabase)
	svcApp, err := BuildServices(stores, ServiceOptions{
		Tokens:     tokens,
		BcryptCost: appCfg.BcryptCost,
		Audit:      auditlog.Config{Auth: appCfg.AuditLogAuth, Admin: appCfg.AuditLogAdmin},
	}, logger)
	if err != nil {
		logger.Error("service registration failed", zap.Error(err))
		return nil, err
	}

	auditHandler := auditfeature.NewHandler(stores.Audit, newResolver(stores, tokens, logger), sessionMgr, logger)
	return newRouter(svcApp, sessionMgr, deps.MongoClient, auditHandler, logger), nil
}

// newRouter mounts the transport-level features. Split out so tests can
// drive it with in-memory stores.
func newRouter(svcApp *service.App, sessionMgr *auth.SessionManager, pinger healthfeature.Pinger, auditHandler *auditfeature.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(pinger, svcApp, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	logoutHandler := logoutfeature.NewHandler(svcApp, sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// The caller's own audit history
	r.Mount("/audit", auditfeature.Routes(auditHandler))

	// Services: /agents, /credentials, /authentication, /profiles, /relationships
	r.Mount("/", rest.New(svcApp, sessionMgr, logger).Routes())

	logger.Info("routes mounted", zap.Strings("services", svcApp.Paths()))
	return r
}
