package authentication

import (
	"fmt"

	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/ratelimit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

type Deps struct {
	Credentials CredentialLookup
	Sessions    SessionStore
	Tokens      *auth.TokenCodec
	BcryptCost  int                     // cost of stored password hashes; 0 means bcrypt.DefaultCost
	Limiter     *ratelimit.LoginLimiter // nil disables login throttling
	Audit       *auditlog.Logger        // nil disables the audit trail
	Log         *zap.Logger
}

// Configure registers the authentication service: create logs in, remove
// logs out.
func Configure(deps Deps) service.ConfigureFunc {
	return func(r *service.Registry) error {
		log := deps.Log
		if log == nil {
			log = r.Logger()
		}
		svc := &Service{Sessions: deps.Sessions, Tokens: deps.Tokens, Audit: deps.Audit, Log: log}

		dummy, err := DummyHash(deps.BcryptCost)
		if err != nil {
			return fmt.Errorf("authentication: dummy hash: %w", err)
		}
		before := []service.Hook{VerifyCredentials(deps.Credentials, dummy, deps.Audit)}
		var after []service.Hook
		if deps.Limiter != nil {
			before = append([]service.Hook{LimitLogins(deps.Limiter, deps.Audit, log)}, before...)
			after = append(after, ResetLoginLimit(deps.Limiter))
		}

		h := service.Hooks{
			Before: service.HookMap{
				service.MethodCreate: before,
				service.MethodRemove: {hooks.RequireAgent()},
			},
		}
		if len(after) > 0 {
			h.After = service.HookMap{service.MethodCreate: after}
		}
		return r.Use(Path, svc, h)
	}
}
