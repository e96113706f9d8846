// Package svcutil holds small helpers shared by resource services.
package svcutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ParseID parses a hex ObjectID. Failures are BadRequest errors naming field.
func ParseID(field, s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, service.BadRequest("%s is not a valid id", field)
	}
	return id, nil
}

// QueryID returns the ObjectID in query[key], or nil when the key is absent.
func QueryID(query map[string]string, key string) (*primitive.ObjectID, error) {
	raw, ok := query[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseID(key, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// StoreError classifies a store failure. Missing documents become NotFound;
// anything else is wrapped and left unclassified.
func StoreError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return service.NotFound("%s not found", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
