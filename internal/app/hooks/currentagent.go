// Package hooks holds hooks shared by every resource module.
package hooks

import (
	"context"
	"errors"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.uber.org/zap"
)

// ErrUnresolved is returned by an IdentityResolver when the token does not
// identify a live agent. AddCurrentAgent treats it as "not logged in".
var ErrUnresolved = errors.New("identity not resolved")

// IdentityResolver maps a transport token to the agent it belongs to.
type IdentityResolver interface {
	ResolveAgent(ctx context.Context, token string) (*models.Agent, error)
}

// AddCurrentAgent resolves the caller's agent from Params.Token and stores
// it in Params.CurrentAgent. An unresolved identity leaves CurrentAgent nil;
// any other resolver error fails the call.
func AddCurrentAgent(resolver IdentityResolver, logger *zap.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		p := hc.Params
		p.CurrentAgent = nil
		if p.Token == "" {
			return nil
		}

		agent, err := resolver.ResolveAgent(ctx, p.Token)
		switch {
		case errors.Is(err, ErrUnresolved):
			logger.Debug("token did not resolve to an agent",
				zap.String("path", hc.Path),
				zap.String("method", string(hc.Method)))
			return nil
		case err != nil:
			return err
		}
		p.CurrentAgent = agent
		return nil
	})
}
