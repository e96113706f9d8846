package relationshipstore_test

import (
	"errors"
	"testing"

	relationshipstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"github.com/evaluation-alex/dogstack-agents/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) *relationshipstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := relationshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	return store
}

func TestStore_DuplicateEdge(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rex, bella := primitive.NewObjectID(), primitive.NewObjectID()
	r, err := store.Create(ctx, models.Relationship{SourceID: rex, TargetID: bella, Type: "follows"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.ID == primitive.NilObjectID || r.CreatedAt.IsZero() {
		t.Error("expected ID and CreatedAt to be set")
	}

	_, err = store.Create(ctx, models.Relationship{SourceID: rex, TargetID: bella, Type: "follows"})
	if !errors.Is(err, relationshipstore.ErrDuplicate) {
		t.Errorf("duplicate Create: got %v, want ErrDuplicate", err)
	}

	// Another type or the reverse direction is a different edge.
	if _, err := store.Create(ctx, models.Relationship{SourceID: rex, TargetID: bella, Type: "likes"}); err != nil {
		t.Errorf("Create other type: %v", err)
	}
	if _, err := store.Create(ctx, models.Relationship{SourceID: bella, TargetID: rex, Type: "follows"}); err != nil {
		t.Errorf("Create reverse: %v", err)
	}
}

func TestStore_Find(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rex, bella, milo := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	edges := []models.Relationship{
		{SourceID: rex, TargetID: bella, Type: "follows"},
		{SourceID: rex, TargetID: milo, Type: "follows"},
		{SourceID: milo, TargetID: bella, Type: "likes"},
	}
	for _, e := range edges {
		if _, err := store.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter relationshipstore.Filter
		want   int
	}{
		{"all", relationshipstore.Filter{}, 3},
		{"by source", relationshipstore.Filter{SourceID: &rex}, 2},
		{"by target", relationshipstore.Filter{TargetID: &bella}, 2},
		{"by target and type", relationshipstore.Filter{TargetID: &bella, Type: "likes"}, 1},
		{"by type", relationshipstore.Filter{Type: "follows"}, 2},
		{"limit", relationshipstore.Filter{Limit: 1}, 1},
		{"no match", relationshipstore.Filter{SourceID: &bella}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("Find: got %d edges, want %d", len(list), tt.want)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r, err := store.Create(ctx, models.Relationship{SourceID: primitive.NewObjectID(), TargetID: primitive.NewObjectID(), Type: "follows"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, r.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete: got %v, want ErrNoDocuments", err)
	}
	if err := store.Delete(ctx, r.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("second Delete: got %v, want ErrNoDocuments", err)
	}
}
