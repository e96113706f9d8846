// Package agents serves the agent identities everything else hangs off.
// Creating an agent is signup: after hooks attach a credential and a
// profile through their own services.
package agents

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/paging"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Path is where the service is mounted.
const Path = "agents"

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context) (models.Agent, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Agent, error)
	List(ctx context.Context, limit int64) ([]models.Agent, error)
	Touch(ctx context.Context, id primitive.ObjectID) (models.Agent, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	Store Store
	Log   *zap.Logger
}

func (s *Service) Find(ctx context.Context, params *service.Params) (any, error) {
	list, err := s.Store.List(ctx, paging.Limit(params.Query))
	if err != nil {
		return nil, svcutil.StoreError(err, "agents")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	a, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "agent")
	}
	return a, nil
}

// Create inserts the bare agent. Signup data is handled by hooks.
func (s *Service) Create(ctx context.Context, data map[string]any, params *service.Params) (any, error) {
	a, err := s.Store.Create(ctx)
	if err != nil {
		return nil, svcutil.StoreError(err, "agent")
	}
	s.Log.Info("agent created", zap.String("agent_id", a.ID.Hex()))
	return a, nil
}

// Patch records that the agent changed. The changes themselves (password)
// are forwarded to other services by before hooks.
func (s *Service) Patch(ctx context.Context, id string, data map[string]any, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	a, err := s.Store.Touch(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "agent")
	}
	return a, nil
}

// Remove deletes the agent. Dependent records are removed by after hooks.
func (s *Service) Remove(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	a, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "agent")
	}
	if err := s.Store.Delete(ctx, oid); err != nil {
		return nil, svcutil.StoreError(err, "agent")
	}
	s.Log.Info("agent removed", zap.String("agent_id", a.ID.Hex()))
	return a, nil
}
