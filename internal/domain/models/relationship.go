// internal/domain/models/relationship.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship is a directed, typed edge between two agents.
type Relationship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceID  primitive.ObjectID `bson:"source_id" json:"sourceId"`
	TargetID  primitive.ObjectID `bson:"target_id" json:"targetId"`
	Type      string             `bson:"type" json:"type"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
