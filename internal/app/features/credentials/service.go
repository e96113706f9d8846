// Package credentials stores agents' local login secrets. The service is
// reachable only from other services, never through a transport.
package credentials

import (
	"context"
	"errors"

	credentialstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/credentials"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/inputval"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Path is where the service is mounted.
const Path = "credentials"

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, c models.Credential) (models.Credential, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Credential, error)
	GetByEmail(ctx context.Context, email string) (models.Credential, error)
	ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Credential, error)
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) (models.Credential, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Service implements find, get, create, patch and remove.
type Service struct {
	Store Store
	Log   *zap.Logger
}

type createInput struct {
	AgentID      string `json:"agentId"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Find looks credentials up by email or by agentId. Listing every
// credential is not supported.
func (s *Service) Find(ctx context.Context, params *service.Params) (any, error) {
	if email := normalize.QueryParam(params.Query["email"]); email != "" {
		c, err := s.Store.GetByEmail(ctx, email)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []models.Credential{}, nil
		}
		if err != nil {
			return nil, svcutil.StoreError(err, "credential")
		}
		return []models.Credential{c}, nil
	}

	agentID, err := svcutil.QueryID(params.Query, "agentId")
	if err != nil {
		return nil, err
	}
	if agentID == nil {
		return nil, service.BadRequest("find requires email or agentId")
	}
	list, err := s.Store.ListByAgent(ctx, *agentID)
	if err != nil {
		return nil, svcutil.StoreError(err, "credentials")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "credential")
	}
	return c, nil
}

// Create expects the password to have been replaced by passwordHash.
func (s *Service) Create(ctx context.Context, data map[string]any, params *service.Params) (any, error) {
	var in createInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	agentID, err := svcutil.ParseID("agentId", in.AgentID)
	if err != nil {
		return nil, err
	}
	email := normalize.Email(in.Email)
	if !inputval.IsValidEmail(email) {
		return nil, service.BadRequest("email is not valid")
	}
	if in.PasswordHash == "" {
		return nil, service.BadRequest("password is required")
	}

	c, err := s.Store.Create(ctx, models.Credential{
		AgentID:      agentID,
		Email:        email,
		PasswordHash: in.PasswordHash,
	})
	if errors.Is(err, credentialstore.ErrDuplicateEmail) {
		return nil, service.Conflict("email is already registered")
	}
	if err != nil {
		return nil, svcutil.StoreError(err, "credential")
	}
	s.Log.Info("credential created", zap.String("agent_id", agentID.Hex()))
	return c, nil
}

// Patch changes the password. Other fields are immutable.
func (s *Service) Patch(ctx context.Context, id string, data map[string]any, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	var in createInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	if in.PasswordHash == "" {
		return nil, service.BadRequest("only password may be changed")
	}
	c, err := s.Store.SetPasswordHash(ctx, oid, in.PasswordHash)
	if err != nil {
		return nil, svcutil.StoreError(err, "credential")
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "credential")
	}
	if err := s.Store.Delete(ctx, oid); err != nil {
		return nil, svcutil.StoreError(err, "credential")
	}
	return c, nil
}
