// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/agents"
	auditfeature "github.com/evaluation-alex/dogstack-agents/internal/app/features/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/authentication"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/credentials"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/profiles"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	agentstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/agents"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	credentialstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/credentials"
	profilestore "github.com/evaluation-alex/dogstack-agents/internal/app/store/profiles"
	relationshipstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/sessions"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/ratelimit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Stores bundles the persistence behind each service.
type Stores struct {
	Agents        agents.Store
	Credentials   credentials.Store
	Profiles      profiles.Store
	Relationships relationships.Store
	Sessions      authentication.SessionStore
	Audit         AuditStore
}

// AuditStore records audit events and reads them back for their agent.
type AuditStore interface {
	auditlog.EventStore
	auditfeature.EventQuery
}

// MongoStores returns Stores backed by db.
func MongoStores(db *mongo.Database) Stores {
	return Stores{
		Agents:        agentstore.New(db),
		Credentials:   credentialstore.New(db),
		Profiles:      profilestore.New(db),
		Relationships: relationshipstore.New(db),
		Sessions:      sessions.New(db),
		Audit:         audit.New(db),
	}
}

// ServiceOptions carries the non-store dependencies of the services.
type ServiceOptions struct {
	Tokens     *auth.TokenCodec
	BcryptCost int
	Audit      auditlog.Config
	// Limiter throttles log ins. Nil means ratelimit.NewLoginLimiter().
	Limiter *ratelimit.LoginLimiter
}

// BuildServices registers every service and freezes the App. Every call
// first runs AddCurrentAgent, which resolves the caller's token through
// the sessions and agents stores. Log ins are throttled per IP and email.
func BuildServices(st Stores, opts ServiceOptions, logger *zap.Logger) (*service.App, error) {
	resolver := newResolver(st, opts.Tokens, logger)
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	trail := auditlog.New(st.Audit, logger, opts.Audit)

	return service.Configure(logger,
		[]service.Hook{hooks.AddCurrentAgent(resolver, logger)},
		agents.Configure(agents.Deps{Store: st.Agents, Audit: trail, Log: logger}),
		credentials.Configure(credentials.Deps{Store: st.Credentials, BcryptCost: opts.BcryptCost, Log: logger}),
		authentication.Configure(authentication.Deps{
			Credentials: st.Credentials,
			Sessions:    st.Sessions,
			Tokens:      opts.Tokens,
			BcryptCost:  opts.BcryptCost,
			Limiter:     limiter,
			Audit:       trail,
			Log:         logger,
		}),
		profiles.Configure(profiles.Deps{Store: st.Profiles, Log: logger}),
		relationships.Configure(relationships.Deps{Store: st.Relationships, Log: logger}),
	)
}

func newResolver(st Stores, tokens *auth.TokenCodec, logger *zap.Logger) *authentication.Resolver {
	return &authentication.Resolver{
		Tokens:   tokens,
		Sessions: st.Sessions,
		Agents:   st.Agents,
		Log:      logger,
	}
}
