// Package profiles serves the public face of each agent.
package profiles

import (
	"context"
	"errors"

	profilestore "github.com/evaluation-alex/dogstack-agents/internal/app/store/profiles"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/paging"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Path is where the service is mounted.
const Path = "profiles"

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error)
	List(ctx context.Context, f profilestore.Filter) ([]models.Profile, error)
	Update(ctx context.Context, id primitive.ObjectID, upd profilestore.Update) (models.Profile, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	Store Store
	Log   *zap.Logger
}

// profileInput is the writable part of a profile. Nil fields were not sent.
type profileInput struct {
	AgentID     string  `json:"agentId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

// Find lists profiles, optionally by agentId or name prefix.
func (s *Service) Find(ctx context.Context, params *service.Params) (any, error) {
	agentID, err := svcutil.QueryID(params.Query, "agentId")
	if err != nil {
		return nil, err
	}
	list, err := s.Store.List(ctx, profilestore.Filter{
		AgentID: agentID,
		Name:    normalize.QueryParam(params.Query["name"]),
		Limit:   paging.Limit(params.Query),
	})
	if err != nil {
		return nil, svcutil.StoreError(err, "profiles")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "profile")
	}
	return p, nil
}

// Create adds the profile for an agent. Each agent has at most one.
func (s *Service) Create(ctx context.Context, data map[string]any, params *service.Params) (any, error) {
	var in profileInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	agentID, err := svcutil.ParseID("agentId", in.AgentID)
	if err != nil {
		return nil, err
	}
	if in.Name == nil || *in.Name == "" {
		return nil, service.BadRequest("name is required")
	}

	p := models.Profile{AgentID: agentID, Name: *in.Name}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Avatar != nil {
		p.Avatar = *in.Avatar
	}
	p, err = s.Store.Create(ctx, p)
	if errors.Is(err, profilestore.ErrDuplicateAgent) {
		return nil, service.Conflict("agent already has a profile")
	}
	if err != nil {
		return nil, svcutil.StoreError(err, "profile")
	}
	s.Log.Info("profile created", zap.String("agent_id", agentID.Hex()))
	return p, nil
}

// Update replaces every writable field; omitted fields are cleared.
func (s *Service) Update(ctx context.Context, id string, data map[string]any, params *service.Params) (any, error) {
	var in profileInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	if in.Name == nil || *in.Name == "" {
		return nil, service.BadRequest("name is required")
	}
	empty := ""
	if in.Description == nil {
		in.Description = &empty
	}
	if in.Avatar == nil {
		in.Avatar = &empty
	}
	return s.apply(ctx, id, in)
}

// Patch changes only the fields that were sent.
func (s *Service) Patch(ctx context.Context, id string, data map[string]any, params *service.Params) (any, error) {
	var in profileInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name == "" {
		return nil, service.BadRequest("name cannot be empty")
	}
	return s.apply(ctx, id, in)
}

func (s *Service) apply(ctx context.Context, id string, in profileInput) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.Update(ctx, oid, profilestore.Update{
		Name:        in.Name,
		Description: in.Description,
		Avatar:      in.Avatar,
	})
	if err != nil {
		return nil, svcutil.StoreError(err, "profile")
	}
	return p, nil
}

// Remove deletes a profile and returns it.
func (s *Service) Remove(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "profile")
	}
	if err := s.Store.Delete(ctx, oid); err != nil {
		return nil, svcutil.StoreError(err, "profile")
	}
	return p, nil
}
