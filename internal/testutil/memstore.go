package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	credentialstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/credentials"
	profilestore "github.com/evaluation-alex/dogstack-agents/internal/app/store/profiles"
	relationshipstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The Mem* stores mirror the mongo stores closely enough for service and
// transport tests: same sentinel errors, same normalization.

// MemAgents is an in-memory agent store.
type MemAgents struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Agent
	// Err, when set, is returned by every call.
	Err error
}

func NewMemAgents() *MemAgents {
	return &MemAgents{rows: make(map[primitive.ObjectID]models.Agent)}
}

func (s *MemAgents) Create(ctx context.Context) (models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Agent{}, s.Err
	}
	now := time.Now().UTC()
	a := models.Agent{ID: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now}
	s.rows[a.ID] = a
	return a, nil
}

func (s *MemAgents) GetByID(ctx context.Context, id primitive.ObjectID) (models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Agent{}, s.Err
	}
	a, ok := s.rows[id]
	if !ok {
		return models.Agent{}, mongo.ErrNoDocuments
	}
	return a, nil
}

func (s *MemAgents) List(ctx context.Context, limit int64) ([]models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Agent, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return truncate(out, limit), nil
}

func (s *MemAgents) Touch(ctx context.Context, id primitive.ObjectID) (models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Agent{}, s.Err
	}
	a, ok := s.rows[id]
	if !ok {
		return models.Agent{}, mongo.ErrNoDocuments
	}
	a.UpdatedAt = time.Now().UTC()
	s.rows[id] = a
	return a, nil
}

func (s *MemAgents) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.rows, id)
	return nil
}

// MemCredentials is an in-memory credential store.
type MemCredentials struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Credential
	// ListErr, when set, is returned by ListByAgent.
	ListErr error
}

func NewMemCredentials() *MemCredentials {
	return &MemCredentials{rows: make(map[primitive.ObjectID]models.Credential)}
}

func (s *MemCredentials) Create(ctx context.Context, c models.Credential) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Email = normalize.Email(c.Email)
	c.EmailCI = text.Fold(c.Email)
	for _, existing := range s.rows {
		if existing.EmailCI == c.EmailCI {
			return models.Credential{}, credentialstore.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.rows[c.ID] = c
	return c, nil
}

func (s *MemCredentials) GetByID(ctx context.Context, id primitive.ObjectID) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return models.Credential{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (s *MemCredentials) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := text.Fold(normalize.Email(email))
	for _, c := range s.rows {
		if c.EmailCI == key {
			return c, nil
		}
	}
	return models.Credential{}, mongo.ErrNoDocuments
}

func (s *MemCredentials) ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := []models.Credential{}
	for _, c := range s.rows {
		if c.AgentID == agentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemCredentials) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return models.Credential{}, mongo.ErrNoDocuments
	}
	c.PasswordHash = hash
	c.UpdatedAt = time.Now().UTC()
	s.rows[id] = c
	return c, nil
}

func (s *MemCredentials) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.rows, id)
	return nil
}

// MemProfiles is an in-memory profile store.
type MemProfiles struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Profile
}

func NewMemProfiles() *MemProfiles {
	return &MemProfiles{rows: make(map[primitive.ObjectID]models.Profile)}
}

func (s *MemProfiles) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.AgentID == p.AgentID {
			return models.Profile{}, profilestore.ErrDuplicateAgent
		}
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now
	s.rows[p.ID] = p
	return p, nil
}

func (s *MemProfiles) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func (s *MemProfiles) List(ctx context.Context, f profilestore.Filter) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := text.Fold(f.Name)
	out := []models.Profile{}
	for _, p := range s.rows {
		if f.AgentID != nil && p.AgentID != *f.AgentID {
			continue
		}
		if prefix != "" && !strings.HasPrefix(p.NameCI, prefix) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return truncate(out, f.Limit), nil
}

func (s *MemProfiles) Update(ctx context.Context, id primitive.ObjectID, upd profilestore.Update) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	if upd.Name != nil {
		p.Name = *upd.Name
		p.NameCI = text.Fold(*upd.Name)
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	p.UpdatedAt = time.Now().UTC()
	s.rows[id] = p
	return p, nil
}

func (s *MemProfiles) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.rows, id)
	return nil
}

// MemRelationships is an in-memory relationship store.
type MemRelationships struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Relationship
	// FindErr, when set, is returned by Find.
	FindErr error
}

func NewMemRelationships() *MemRelationships {
	return &MemRelationships{rows: make(map[primitive.ObjectID]models.Relationship)}
}

func (s *MemRelationships) Create(ctx context.Context, r models.Relationship) (models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.rows {
		if e.SourceID == r.SourceID && e.TargetID == r.TargetID && e.Type == r.Type {
			return models.Relationship{}, relationshipstore.ErrDuplicate
		}
	}
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	s.rows[r.ID] = r
	return r, nil
}

func (s *MemRelationships) GetByID(ctx context.Context, id primitive.ObjectID) (models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return models.Relationship{}, mongo.ErrNoDocuments
	}
	return r, nil
}

func (s *MemRelationships) Find(ctx context.Context, f relationshipstore.Filter) ([]models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	out := []models.Relationship{}
	for _, r := range s.rows {
		if f.SourceID != nil && r.SourceID != *f.SourceID {
			continue
		}
		if f.TargetID != nil && r.TargetID != *f.TargetID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return truncate(out, f.Limit), nil
}

func (s *MemRelationships) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.rows, id)
	return nil
}

// MemSessions is an in-memory login session store.
type MemSessions struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Session
	// Err, when set, is returned by GetByID.
	Err error
}

func NewMemSessions() *MemSessions {
	return &MemSessions{rows: make(map[primitive.ObjectID]models.Session)}
}

func (s *MemSessions) Create(ctx context.Context, agentID primitive.ObjectID, ip, userAgent string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sess := models.Session{
		ID:           primitive.NewObjectID(),
		AgentID:      agentID,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	s.rows[sess.ID] = sess
	return sess, nil
}

func (s *MemSessions) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Session{}, s.Err
	}
	sess, ok := s.rows[id]
	if !ok {
		return models.Session{}, mongo.ErrNoDocuments
	}
	return sess, nil
}

func (s *MemSessions) Touch(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.rows[id]; ok && sess.Open() {
		sess.LastActiveAt = time.Now().UTC()
		s.rows[id] = sess
	}
	return nil
}

func (s *MemSessions) Close(ctx context.Context, id primitive.ObjectID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.rows[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if !sess.Open() {
		return nil
	}
	now := time.Now().UTC()
	sess.LogoutAt = &now
	sess.EndReason = reason
	sess.DurationSecs = int64(now.Sub(sess.LoginAt).Seconds())
	s.rows[id] = sess
	return nil
}

// MemAudit records audit events in memory.
type MemAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func NewMemAudit() *MemAudit { return &MemAudit{} }

func (s *MemAudit) Log(ctx context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.events = append(s.events, e)
	return nil
}

// Types returns the recorded event types in order.
func (s *MemAudit) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType
	}
	return out
}

// Query filters like audit.Store.Query, newest first.
func (s *MemAudit) Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []audit.Event{}
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		switch {
		case f.AgentID != nil && (e.AgentID == nil || *e.AgentID != *f.AgentID):
		case f.Category != "" && e.Category != f.Category:
		case f.EventType != "" && e.EventType != f.EventType:
		case f.StartTime != nil && e.Timestamp.Before(*f.StartTime):
		case f.EndTime != nil && e.Timestamp.After(*f.EndTime):
		default:
			out = append(out, e)
		}
	}
	if f.Offset > 0 {
		if f.Offset >= int64(len(out)) {
			return []audit.Event{}, nil
		}
		out = out[f.Offset:]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	return truncate(out, limit), nil
}

func truncate[T any](rows []T, limit int64) []T {
	if limit > 0 && int64(len(rows)) > limit {
		return rows[:limit]
	}
	return rows
}
