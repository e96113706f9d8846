// internal/domain/models/credential.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential holds an agent's local login secret.
//
// PasswordHash is never serialized to callers; the credentials service
// strips it in an after hook as well.
type Credential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID      primitive.ObjectID `bson:"agent_id" json:"agentId"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // folded for lookups
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
