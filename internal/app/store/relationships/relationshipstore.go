// internal/app/store/relationships/relationshipstore.go
package relationshipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when the same typed edge already exists.
var ErrDuplicate = errors.New("relationship already exists")

// Filter narrows Find. Zero fields match everything.
type Filter struct {
	SourceID *primitive.ObjectID
	TargetID *primitive.ObjectID
	Type     string
	Limit    int64
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("relationships")}
}

// EnsureIndexes makes (source, target, type) unique and indexes the target side.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source_id", Value: 1}, {Key: "target_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("uniq_relationships_edge").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "target_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_relationships_target"),
		},
	})
	return err
}

// Create inserts an edge.
func (s *Store) Create(ctx context.Context, r models.Relationship) (models.Relationship, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Relationship{}, ErrDuplicate
		}
		return models.Relationship{}, err
	}
	return r, nil
}

// GetByID loads an edge. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Relationship, error) {
	var r models.Relationship
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	return r, err
}

// Find returns edges matching f, newest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.Relationship, error) {
	filter := bson.M{}
	if f.SourceID != nil {
		filter["source_id"] = *f.SourceID
	}
	if f.TargetID != nil {
		filter["target_id"] = *f.TargetID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Relationship{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an edge. Returns mongo.ErrNoDocuments if nothing was deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
