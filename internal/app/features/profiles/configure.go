package profiles

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

type Deps struct {
	Store Store
	Log   *zap.Logger
}

// Configure registers the profiles service. Profiles are created by signup
// and removed with their agent, so create and remove are internal only.
func Configure(deps Deps) service.ConfigureFunc {
	return func(r *service.Registry) error {
		log := deps.Log
		if log == nil {
			log = r.Logger()
		}
		svc := &Service{Store: deps.Store, Log: log}
		owner := RestrictToOwner(deps.Store)
		return r.Use(Path, svc, service.Hooks{
			Before: service.HookMap{
				service.MethodCreate: {hooks.DisallowExternal(), SanitizeProfile()},
				service.MethodUpdate: {owner, SanitizeProfile()},
				service.MethodPatch:  {owner, SanitizeProfile()},
				service.MethodRemove: {hooks.DisallowExternal()},
			},
		})
	}
}
