// internal/app/store/credentials/credentialstore.go
package credentialstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when a credential with the same email exists.
var ErrDuplicateEmail = errors.New("a credential with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("credentials")}
}

// EnsureIndexes creates the unique email index and the agent lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_credentials_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "agent_id", Value: 1}},
			Options: options.Index().SetName("idx_credentials_agent"),
		},
	})
	return err
}

// Create inserts a credential. PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, c models.Credential) (models.Credential, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Email = normalize.Email(c.Email)
	c.EmailCI = text.Fold(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Credential{}, ErrDuplicateEmail
		}
		return models.Credential{}, err
	}
	return c, nil
}

// GetByID loads a credential. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Credential, error) {
	var c models.Credential
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, err
}

// GetByEmail looks up a credential by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&c)
	return c, err
}

// ListByAgent returns every credential owned by agentID.
func (s *Store) ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Credential, error) {
	cur, err := s.c.Find(ctx, bson.M{"agent_id": agentID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Credential{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPasswordHash replaces the stored hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) (models.Credential, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Credential
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
		opts,
	).Decode(&c)
	return c, err
}

// Delete removes a credential. Returns mongo.ErrNoDocuments if nothing was deleted.
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
