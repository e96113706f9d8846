// internal/app/store/agents/agentstore.go
package agentstore

import (
	"context"
	"time"

	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("agents")}
}

// EnsureIndexes creates the indexes used by List.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_agents_created"),
	})
	return err
}

// Create inserts a new agent.
func (s *Store) Create(ctx context.Context) (models.Agent, error) {
	now := time.Now().UTC()
	a := models.Agent{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Agent{}, err
	}
	return a, nil
}

// GetByID loads an agent. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Agent, error) {
	var a models.Agent
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

// List returns the newest agents first.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Agent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	agents := []models.Agent{}
	if err := cur.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Touch bumps updated_at and returns the stored agent.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) (models.Agent, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Agent
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}},
		opts,
	).Decode(&a)
	return a, err
}

// Delete removes an agent. Returns mongo.ErrNoDocuments if nothing was deleted.
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
