// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls log in, log out and password events.
	Auth string
	// Admin controls agent lifecycle events (signup, removal).
	Admin string
}

// ValidMode reports whether m is one of the Mode constants.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// EventStore persists audit events. audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to the EventStore and to structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.AgentID != nil {
		fields = append(fields, zap.String("agent_id", event.AgentID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func caller(p *service.Params) (ip, ua string) {
	if p == nil {
		return "", ""
	}
	return p.IP, p.UserAgent
}

func authEvent(p *service.Params, eventType string, agentID *primitive.ObjectID, success bool) audit.Event {
	ip, ua := caller(p)
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		AgentID:   agentID,
		IP:        ip,
		UserAgent: ua,
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful log in.
func (l *Logger) LoginSuccess(ctx context.Context, p *service.Params, agentID primitive.ObjectID, strategy, sessionID string) {
	e := authEvent(p, audit.EventLoginSuccess, &agentID, true)
	e.Details = map[string]string{"strategy": strategy, "session_id": sessionID}
	l.Log(ctx, e)
}

// LoginFailedUnknownEmail logs a log in for an email with no credential.
func (l *Logger) LoginFailedUnknownEmail(ctx context.Context, p *service.Params, email string) {
	e := authEvent(p, audit.EventLoginFailedUnknownEmail, nil, false)
	e.FailureReason = "unknown email"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a log in with the wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, p *service.Params, agentID primitive.ObjectID, email string) {
	e := authEvent(p, audit.EventLoginFailedWrongPassword, &agentID, false)
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a log in rejected by the login limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, p *service.Params, email, reason string) {
	e := authEvent(p, audit.EventLoginFailedRateLimit, nil, false)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs the end of a session.
func (l *Logger) Logout(ctx context.Context, p *service.Params, agentIDStr, sessionID string) {
	var agentID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(agentIDStr); err == nil {
		agentID = &oid
	}
	e := authEvent(p, audit.EventLogout, agentID, true)
	e.Details = map[string]string{"session_id": sessionID}
	l.Log(ctx, e)
}

// PasswordChanged logs a password change by the agent itself.
func (l *Logger) PasswordChanged(ctx context.Context, p *service.Params, agentID primitive.ObjectID) {
	l.Log(ctx, authEvent(p, audit.EventPasswordChanged, &agentID, true))
}

// --- Agent lifecycle ---

// AgentCreated logs a signup.
func (l *Logger) AgentCreated(ctx context.Context, p *service.Params, agentID primitive.ObjectID) {
	ip, ua := caller(p)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAgentCreated,
		AgentID:   &agentID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
	})
}

// AgentRemoved logs an agent removal. actor is the current agent, if any.
func (l *Logger) AgentRemoved(ctx context.Context, p *service.Params, agentID primitive.ObjectID) {
	ip, ua := caller(p)
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAgentRemoved,
		AgentID:   &agentID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
	}
	if p != nil && p.CurrentAgent != nil && p.CurrentAgent.ID != agentID {
		actor := p.CurrentAgent.ID
		e.ActorID = &actor
	}
	l.Log(ctx, e)
}
