package authentication

import (
	"context"
	"errors"

	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AgentLookup loads agents by id.
type AgentLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Agent, error)
}

// Resolver turns access tokens into agents for hooks.AddCurrentAgent.
type Resolver struct {
	Tokens   *auth.TokenCodec
	Sessions SessionStore
	Agents   AgentLookup
	Log      *zap.Logger
}

// ResolveAgent returns the agent behind token. Tokens that are invalid,
// expired, or point at a closed session or a missing agent yield
// hooks.ErrUnresolved. Store failures are returned as is.
func (r *Resolver) ResolveAgent(ctx context.Context, token string) (*models.Agent, error) {
	claims, err := r.Tokens.Decode(token)
	if err != nil {
		return nil, hooks.ErrUnresolved
	}
	sid, err := primitive.ObjectIDFromHex(claims.SessionID)
	if err != nil {
		return nil, hooks.ErrUnresolved
	}
	aid, err := primitive.ObjectIDFromHex(claims.AgentID)
	if err != nil {
		return nil, hooks.ErrUnresolved
	}

	sess, err := r.Sessions.GetByID(ctx, sid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, hooks.ErrUnresolved
	}
	if err != nil {
		return nil, err
	}
	if !sess.Open() || sess.AgentID != aid {
		return nil, hooks.ErrUnresolved
	}

	agent, err := r.Agents.GetByID(ctx, aid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, hooks.ErrUnresolved
	}
	if err != nil {
		return nil, err
	}

	if err := r.Sessions.Touch(ctx, sid); err != nil {
		r.Log.Warn("session touch failed", zap.String("session_id", sid.Hex()), zap.Error(err))
	}
	return &agent, nil
}
