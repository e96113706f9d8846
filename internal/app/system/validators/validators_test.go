package validators_test

import (
	"testing"
	"time"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/validators"
	"github.com/evaluation-alex/dogstack-agents/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSchema_KnownCollections(t *testing.T) {
	for _, name := range validators.Collections {
		if validators.Schema(name) == nil {
			t.Errorf("expected a schema for %q", name)
		}
	}
	if validators.Schema("nope") != nil {
		t.Error("expected nil schema for unknown collection")
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range validators.Collections {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators_RejectAndAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"agent missing created_at", "agents", bson.M{"updated_at": now}, true},
		{"agent ok", "agents", bson.M{"created_at": now, "updated_at": now}, false},
		{"credential missing hash", "credentials", bson.M{"agent_id": a, "email": "a@b.co", "email_ci": "a@b.co"}, true},
		{"credential ok", "credentials", bson.M{"agent_id": a, "email": "a@b.co", "email_ci": "a@b.co", "password_hash": "x"}, false},
		{"profile blank name", "profiles", bson.M{"agent_id": a, "name": "   ", "name_ci": "   "}, true},
		{"profile ok", "profiles", bson.M{"agent_id": a, "name": "Rex", "name_ci": "rex"}, false},
		{"relationship bad type", "relationships", bson.M{"source_id": a, "target_id": b, "type": "Follows!", "created_at": now}, true},
		{"relationship ok", "relationships", bson.M{"source_id": a, "target_id": b, "type": "follows", "created_at": now}, false},
		{"session bad reason", "sessions", bson.M{"agent_id": a, "login_at": now, "last_active_at": now, "end_reason": "crashed"}, true},
		{"session ok", "sessions", bson.M{"agent_id": a, "login_at": now, "last_active_at": now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}
