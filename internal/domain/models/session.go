// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndReasonLogout   = "logout"
	EndReasonInactive = "inactive"
)

// Session is one authenticated login. Tokens reference it by ID, so
// closing the session invalidates every token issued for it.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID      primitive.ObjectID `bson:"agent_id" json:"agentId"`
	LoginAt      time.Time          `bson:"login_at" json:"loginAt"`
	LogoutAt     *time.Time         `bson:"logout_at,omitempty" json:"logoutAt,omitempty"`
	LastActiveAt time.Time          `bson:"last_active_at" json:"lastActiveAt"`
	EndReason    string             `bson:"end_reason,omitempty" json:"endReason,omitempty"`

	IP        string `bson:"ip" json:"-"`
	UserAgent string `bson:"user_agent,omitempty" json:"-"`

	DurationSecs int64 `bson:"duration_secs,omitempty" json:"durationSecs,omitempty"`
}

// Open reports whether the session has not been closed.
func (s Session) Open() bool {
	return s.LogoutAt == nil
}
