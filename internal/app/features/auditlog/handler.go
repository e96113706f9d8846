// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"go.uber.org/zap"
)

// EventQuery reads audit events. audit.Store satisfies it.
type EventQuery interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Events     EventQuery
	Agents     hooks.IdentityResolver
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler constructs the audit history handler. Callers are identified
// the same way as service calls: a bearer token or the session cookie.
func NewHandler(events EventQuery, agents hooks.IdentityResolver, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Events:     events,
		Agents:     agents,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}
