// Package authentication logs agents in and out. Logging in opens a
// session and issues an access token for it; logging out closes it.
package authentication

import (
	"context"
	"errors"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Path is where the service is mounted.
const Path = "authentication"

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, agentID primitive.ObjectID, ip, userAgent string) (models.Session, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error)
	Touch(ctx context.Context, id primitive.ObjectID) error
	Close(ctx context.Context, id primitive.ObjectID, reason string) error
}

// Result is returned by log in and log out.
type Result struct {
	AccessToken string `json:"accessToken,omitempty"`
	AgentID     string `json:"agentId"`
	SessionID   string `json:"sessionId"`
}

type Service struct {
	Sessions SessionStore
	Tokens   *auth.TokenCodec
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// Create logs in the agent verified by the before hooks.
func (s *Service) Create(ctx context.Context, data map[string]any, params *service.Params) (any, error) {
	v, ok := params.Value(verifiedAgentKey)
	if !ok {
		return nil, service.NotAuthenticated("credentials were not verified")
	}
	agentID := v.(primitive.ObjectID)

	sess, err := s.Sessions.Create(ctx, agentID, params.IP, params.UserAgent)
	if err != nil {
		return nil, svcutil.StoreError(err, "session")
	}
	tok, err := s.Tokens.Encode(auth.Claims{
		SessionID: sess.ID.Hex(),
		AgentID:   agentID.Hex(),
	})
	if err != nil {
		return nil, err
	}
	params.Session.Issued = tok

	s.Audit.LoginSuccess(ctx, params, agentID, strategyOf(params), sess.ID.Hex())
	s.Log.Info("agent logged in",
		zap.String("agent_id", agentID.Hex()),
		zap.String("session_id", sess.ID.Hex()),
		zap.String("ip", params.IP))
	return Result{AccessToken: tok, AgentID: agentID.Hex(), SessionID: sess.ID.Hex()}, nil
}

// Remove logs out the session behind the caller's token. The id is ignored.
func (s *Service) Remove(ctx context.Context, id string, params *service.Params) (any, error) {
	claims, err := s.Tokens.Decode(params.Token)
	if err != nil || params.CurrentAgent == nil || claims.AgentID != params.CurrentAgent.ID.Hex() {
		return nil, service.NotAuthenticated("not logged in")
	}
	sid, err := primitive.ObjectIDFromHex(claims.SessionID)
	if err != nil {
		return nil, service.NotAuthenticated("not logged in")
	}

	err = s.Sessions.Close(ctx, sid, models.EndReasonLogout)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, service.NotAuthenticated("not logged in")
	}
	if err != nil {
		return nil, svcutil.StoreError(err, "session")
	}
	params.Session.Cleared = true

	s.Audit.Logout(ctx, params, claims.AgentID, claims.SessionID)
	s.Log.Info("agent logged out",
		zap.String("agent_id", claims.AgentID),
		zap.String("session_id", claims.SessionID))
	return Result{AgentID: claims.AgentID, SessionID: claims.SessionID}, nil
}

func strategyOf(params *service.Params) string {
	if v, ok := params.Value(strategyKey); ok {
		return v.(string)
	}
	return ""
}
