package agents

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

type Deps struct {
	Store Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// Configure registers the agents service. find, get and create (signup)
// are public; patch and remove are limited to the agent itself.
func Configure(deps Deps) service.ConfigureFunc {
	return func(r *service.Registry) error {
		log := deps.Log
		if log == nil {
			log = r.Logger()
		}
		svc := &Service{Store: deps.Store, Log: log}
		return r.Use(Path, svc, service.Hooks{
			Before: service.HookMap{
				service.MethodCreate: {ValidateSignup()},
				service.MethodPatch:  {hooks.RequireSelf(), ChangePassword()},
				service.MethodRemove: {hooks.RequireSelf(), RemoveDependents(deps.Store)},
			},
			After: service.HookMap{
				service.MethodCreate: {CreateCredential(deps.Store, log), CreateProfile(deps.Store, log), Audit(deps.Audit)},
				service.MethodPatch:  {Audit(deps.Audit)},
				service.MethodRemove: {Audit(deps.Audit)},
			},
		})
	}
}
