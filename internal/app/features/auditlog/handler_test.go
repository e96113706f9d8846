package auditlog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evaluation-alex/dogstack-agents/internal/app/features/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"github.com/evaluation-alex/dogstack-agents/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listResponse struct {
	Data []struct {
		ID        string `json:"id"`
		EventType string `json:"eventType"`
		ActorID   string `json:"actorId"`
	} `json:"data"`
	Page    int  `json:"page"`
	HasNext bool `json:"hasNext"`
}

type fixture struct {
	router http.Handler
	events *testutil.MemAudit
	ada    *models.Agent
	bob    *models.Agent
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	f := fixture{
		events: testutil.NewMemAudit(),
		ada:    &models.Agent{ID: primitive.NewObjectID()},
		bob:    &models.Agent{ID: primitive.NewObjectID()},
	}
	resolver := testutil.StaticResolver{"ada": f.ada, "bob": f.bob}
	f.router = auditlog.Routes(auditlog.NewHandler(f.events, resolver, sm, logger))
	return f
}

func (f fixture) log(t *testing.T, agent *models.Agent, eventType string, at time.Time) {
	t.Helper()
	id := agent.ID
	if err := f.events.Log(context.Background(), audit.Event{
		Timestamp: at,
		Category:  audit.CategoryAuth,
		EventType: eventType,
		AgentID:   &id,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}
}

func (f fixture) get(t *testing.T, query, token string) (int, listResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", "/"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out listResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec.Code, out
}

func TestServeList_OwnEventsOnly(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.log(t, f.ada, audit.EventLoginSuccess, now.Add(-2*time.Minute))
	f.log(t, f.bob, audit.EventLoginSuccess, now.Add(-time.Minute))
	f.log(t, f.ada, audit.EventLogout, now)

	code, out := f.get(t, "", "ada")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if len(out.Data) != 2 {
		t.Fatalf("events: got %d, want 2", len(out.Data))
	}
	if out.Data[0].EventType != audit.EventLogout || out.Data[1].EventType != audit.EventLoginSuccess {
		t.Errorf("expected newest first, got %+v", out.Data)
	}
	if out.HasNext || out.Page != 1 {
		t.Errorf("paging: page %d hasNext %v", out.Page, out.HasNext)
	}
}

func TestServeList_Filters(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.log(t, f.ada, audit.EventLoginSuccess, day.AddDate(0, 0, -1))
	f.log(t, f.ada, audit.EventLogout, day)
	f.log(t, f.ada, audit.EventLoginSuccess, day)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"event type", "?event_type=logout", 1},
		{"category", "?category=admin", 0},
		{"start date", "?start_date=2026-03-10", 2},
		{"end date inclusive", "?end_date=2026-03-09", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := f.get(t, tt.query, "ada")
			if code != http.StatusOK {
				t.Fatalf("status: got %d", code)
			}
			if len(out.Data) != tt.want {
				t.Errorf("events: got %d, want %d", len(out.Data), tt.want)
			}
		})
	}
}

func TestServeList_Paging(t *testing.T) {
	f := newFixture(t)
	start := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 55; i++ {
		f.log(t, f.ada, audit.EventLoginSuccess, start.Add(time.Duration(i)*time.Second))
	}

	_, first := f.get(t, "", "ada")
	if len(first.Data) != 50 || !first.HasNext {
		t.Fatalf("page 1: got %d events, hasNext %v", len(first.Data), first.HasNext)
	}
	_, second := f.get(t, "?page=2", "ada")
	if len(second.Data) != 5 || second.HasNext || second.Page != 2 {
		t.Fatalf("page 2: got %d events, hasNext %v, page %d", len(second.Data), second.HasNext, second.Page)
	}
}

func TestServeList_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
		token string
		want  int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"unknown token", "", "mallory", http.StatusUnauthorized},
		{"bad start date", "?start_date=yesterday", "ada", http.StatusBadRequest},
		{"bad end date", "?end_date=03/10/2026", "ada", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := f.get(t, tt.query, tt.token); code != tt.want {
				t.Errorf("status: got %d, want %d", code, tt.want)
			}
		})
	}
}
