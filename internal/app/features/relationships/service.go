// Package relationships serves directed, typed edges between agents.
package relationships

import (
	"context"
	"errors"
	"regexp"

	relationshipstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/paging"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Path is where the service is mounted.
const Path = "relationships"

var typePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, r models.Relationship) (models.Relationship, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Relationship, error)
	Find(ctx context.Context, f relationshipstore.Filter) ([]models.Relationship, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	Store Store
	Log   *zap.Logger
}

type createInput struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}

// Find lists edges filtered by sourceId, targetId and type.
func (s *Service) Find(ctx context.Context, params *service.Params) (any, error) {
	source, err := svcutil.QueryID(params.Query, "sourceId")
	if err != nil {
		return nil, err
	}
	target, err := svcutil.QueryID(params.Query, "targetId")
	if err != nil {
		return nil, err
	}
	list, err := s.Store.Find(ctx, relationshipstore.Filter{
		SourceID: source,
		TargetID: target,
		Type:     normalize.Type(params.Query["type"]),
		Limit:    paging.Limit(params.Query),
	})
	if err != nil {
		return nil, svcutil.StoreError(err, "relationships")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	r, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "relationship")
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, data map[string]any, params *service.Params) (any, error) {
	var in createInput
	if err := service.Decode(data, &in); err != nil {
		return nil, err
	}
	source, err := svcutil.ParseID("sourceId", in.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := svcutil.ParseID("targetId", in.TargetID)
	if err != nil {
		return nil, err
	}
	if source == target {
		return nil, service.BadRequest("an agent cannot relate to itself")
	}
	typ := normalize.Type(in.Type)
	if !typePattern.MatchString(typ) {
		return nil, service.BadRequest("type must be a lowercase slug")
	}

	r, err := s.Store.Create(ctx, models.Relationship{SourceID: source, TargetID: target, Type: typ})
	if errors.Is(err, relationshipstore.ErrDuplicate) {
		return nil, service.Conflict("relationship already exists")
	}
	if err != nil {
		return nil, svcutil.StoreError(err, "relationship")
	}
	s.Log.Info("relationship created",
		zap.String("source_id", source.Hex()),
		zap.String("target_id", target.Hex()),
		zap.String("type", typ))
	return r, nil
}

// Remove deletes an edge and returns it.
func (s *Service) Remove(ctx context.Context, id string, params *service.Params) (any, error) {
	oid, err := svcutil.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	r, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return nil, svcutil.StoreError(err, "relationship")
	}
	if err := s.Store.Delete(ctx, oid); err != nil {
		return nil, svcutil.StoreError(err, "relationship")
	}
	return r, nil
}
