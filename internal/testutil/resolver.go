package testutil

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.uber.org/zap"
)

// StaticResolver resolves tokens from a fixed map.
type StaticResolver map[string]*models.Agent

func (r StaticResolver) ResolveAgent(ctx context.Context, token string) (*models.Agent, error) {
	if a, ok := r[token]; ok {
		return a, nil
	}
	return nil, hooks.ErrUnresolved
}

// GlobalHooks returns the global before-all hooks used in production with
// r standing in for token resolution.
func (r StaticResolver) GlobalHooks() []service.Hook {
	return []service.Hook{hooks.AddCurrentAgent(r, zap.NewNop())}
}

// External returns params for a transport call carrying token.
func External(token string, query map[string]string) *service.Params {
	return &service.Params{Provider: service.ProviderREST, Token: token, Query: query}
}
