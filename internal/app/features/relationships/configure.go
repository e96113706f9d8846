package relationships

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

type Deps struct {
	Store Store
	Log   *zap.Logger
}

// Configure registers the relationships service.
func Configure(deps Deps) service.ConfigureFunc {
	return func(r *service.Registry) error {
		log := deps.Log
		if log == nil {
			log = r.Logger()
		}
		svc := &Service{Store: deps.Store, Log: log}
		return r.Use(Path, svc, service.Hooks{
			Before: service.HookMap{
				service.MethodCreate: {SetSource(), RequireTarget()},
				service.MethodRemove: {RestrictToSource(deps.Store)},
			},
		})
	}
}
