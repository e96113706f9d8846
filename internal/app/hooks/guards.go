package hooks

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
)

// RequireAgent rejects callers without a current agent.
func RequireAgent() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		if !hc.Params.Authenticated() {
			return service.NotAuthenticated("%s.%s requires a logged in agent", hc.Path, hc.Method)
		}
		return nil
	})
}

// DisallowExternal rejects calls that arrived through a transport. The
// method is reported as not allowed so its existence is not leaked.
func DisallowExternal() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		if hc.Params.External() {
			return service.MethodNotAllowed("method %q is not allowed on %s", hc.Method, hc.Path)
		}
		return nil
	})
}

// RequireSelf rejects external calls whose id is not the current agent's
// id. Internal calls pass.
func RequireSelf() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		p := hc.Params
		if !p.External() {
			return nil
		}
		if !p.Authenticated() {
			return service.NotAuthenticated("%s.%s requires a logged in agent", hc.Path, hc.Method)
		}
		if p.CurrentAgent.ID.Hex() != hc.ID {
			return service.Forbidden("agents may only change themselves")
		}
		return nil
	})
}
