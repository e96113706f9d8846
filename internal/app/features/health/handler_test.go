package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evaluation-alex/dogstack-agents/internal/app/features/health"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error { return f.err }

type healthBody struct {
	Status   string   `json:"status"`
	Database string   `json:"database"`
	Services []string `json:"services"`
	Message  string   `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, body
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	rec, body := serve(t, handler)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("body = %+v, want ok/connected", body)
	}
}

type noop struct{}

func (noop) Find(ctx context.Context, p *service.Params) (any, error) { return nil, nil }

func TestServe_ListsServices(t *testing.T) {
	app, err := service.Configure(zap.NewNop(), nil,
		func(r *service.Registry) error { return r.Use("agents", noop{}) },
		func(r *service.Registry) error { return r.Use("profiles", noop{}) },
	)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	rec, body := serve(t, health.NewHandler(fakePinger{}, app, zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(body.Services) != 2 || body.Services[0] != "agents" || body.Services[1] != "profiles" {
		t.Errorf("services = %v, want [agents profiles]", body.Services)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, nil, zap.NewNop())

	rec, body := serve(t, handler)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if body.Status != "error" || body.Database != "disconnected" || body.Message != "Database unavailable" {
		t.Errorf("body = %+v", body)
	}
}
