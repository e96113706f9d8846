package credentials

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Deps holds what the module needs.
type Deps struct {
	Store      Store
	BcryptCost int // 0 means bcrypt.DefaultCost
	Log        *zap.Logger
}

// Configure registers the credentials service.
func Configure(deps Deps) service.ConfigureFunc {
	return func(r *service.Registry) error {
		cost := deps.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		log := deps.Log
		if log == nil {
			log = r.Logger()
		}
		svc := &Service{Store: deps.Store, Log: log}
		return r.Use(Path, svc, service.Hooks{
			Before: service.HookMap{
				service.MethodAll:    {hooks.DisallowExternal()},
				service.MethodCreate: {HashPassword(cost)},
				service.MethodPatch:  {HashPassword(cost)},
			},
			After: service.HookMap{
				service.MethodAll: {ProtectPassword()},
			},
		})
	}
}
