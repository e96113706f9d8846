package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/rest"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

// notes implements find, get, create and remove. It records the params of
// the last call.
type notes struct {
	last *service.Params
	data map[string]any
}

func (n *notes) Find(ctx context.Context, p *service.Params) (any, error) {
	n.last = p
	return []string{"a", "b"}, nil
}

func (n *notes) Get(ctx context.Context, id string, p *service.Params) (any, error) {
	n.last = p
	switch id {
	case "boom":
		return nil, errors.New("secret connection string leaked")
	case "missing":
		return nil, service.NotFound("note %s not found", id)
	}
	return map[string]string{"id": id}, nil
}

func (n *notes) Create(ctx context.Context, data map[string]any, p *service.Params) (any, error) {
	n.last = p
	n.data = data
	if data["login"] == true {
		p.Session.Issued = "issued-token"
	}
	return data, nil
}

func (n *notes) Remove(ctx context.Context, id string, p *service.Params) (any, error) {
	n.last = p
	p.Session.Cleared = true
	return map[string]string{"removed": id}, nil
}

func newServer(t *testing.T) (*httptest.Server, *notes, *auth.SessionManager) {
	t.Helper()
	svc := &notes{}
	app, err := service.Configure(zap.NewNop(), nil, func(r *service.Registry) error {
		return r.Use("notes", svc)
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	srv := httptest.NewServer(rest.New(app, sm, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv, svc, sm
}

func do(t *testing.T, method, url, body string, header map[string]string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
	}
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if method == "POST" || method == "PUT" || method == "PATCH" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) service.Error {
	t.Helper()
	var e service.Error
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestRoutes_MethodMapping(t *testing.T) {
	srv, svc, _ := newServer(t)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/notes", "", http.StatusOK},
		{"GET", "/notes/42", "", http.StatusOK},
		{"POST", "/notes", `{"text":"hi"}`, http.StatusCreated},
		{"DELETE", "/notes/42", "", http.StatusOK},
		{"DELETE", "/notes", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if svc.last == nil || svc.last.Provider != service.ProviderREST {
				t.Error("call did not carry the rest provider")
			}
		})
	}
}

func TestRoutes_QueryAndBody(t *testing.T) {
	srv, svc, _ := newServer(t)

	do(t, "GET", srv.URL+"/notes?agentId=abc&$limit=5", "", nil)
	if svc.last.Query["agentId"] != "abc" || svc.last.Query["$limit"] != "5" {
		t.Errorf("Query = %v", svc.last.Query)
	}

	do(t, "POST", srv.URL+"/notes", `{"text":"hello","n":3}`, nil)
	if svc.data["text"] != "hello" || svc.data["n"] != float64(3) {
		t.Errorf("Data = %v", svc.data)
	}

	do(t, "POST", srv.URL+"/notes", "", nil)
	if svc.data == nil || len(svc.data) != 0 {
		t.Errorf("empty body Data = %v, want empty map", svc.data)
	}
}

func TestRoutes_Errors(t *testing.T) {
	srv, _, _ := newServer(t)

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantStatus  int
		wantName    string
		wantMessage string
	}{
		{"classified", "GET", "/notes/missing", "", 404, "NotFound", "note missing not found"},
		{"unclassified hides detail", "GET", "/notes/boom", "", 500, "GeneralError", "internal error"},
		{"unimplemented method", "PUT", "/notes/1", `{}`, 405, "MethodNotAllowed", ""},
		{"unknown service", "GET", "/nothing", "", 404, "NotFound", ""},
		{"malformed json", "POST", "/notes", `{"text":`, 400, "BadRequest", "request body must be a JSON object"},
		{"json array", "POST", "/notes", `[1,2]`, 400, "BadRequest", "request body must be a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			e := decodeError(t, resp)
			if e.Code != tt.wantStatus || e.Name != tt.wantName {
				t.Errorf("body = %+v, want code %d name %s", e, tt.wantStatus, tt.wantName)
			}
			if tt.wantMessage != "" && e.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", e.Message, tt.wantMessage)
			}
		})
	}
}

func TestRoutes_BodyTooLarge(t *testing.T) {
	svc := &notes{}
	app, err := service.Configure(zap.NewNop(), nil, func(r *service.Registry) error {
		return r.Use("notes", svc)
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	sm, _ := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	h := rest.New(app, sm, zap.NewNop()).Routes()

	big := `{"text":"` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest("POST", "/notes", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.data != nil {
		t.Error("oversized body reached the service")
	}
}

func TestRoutes_RequestID(t *testing.T) {
	srv, _, _ := newServer(t)

	resp := do(t, "GET", srv.URL+"/notes", "", nil)
	generated := resp.Header.Get(rest.RequestIDHeader)
	if len(generated) != 36 {
		t.Fatalf("X-Request-ID = %q, want a uuid", generated)
	}

	const incoming = "6f1c1a8e-0a4f-4a57-9c3c-2b7d2f0f5e11"
	resp = do(t, "GET", srv.URL+"/notes", "", map[string]string{rest.RequestIDHeader: incoming})
	if got := resp.Header.Get(rest.RequestIDHeader); got != incoming {
		t.Errorf("X-Request-ID = %q, want incoming %q", got, incoming)
	}

	resp = do(t, "GET", srv.URL+"/notes", "", map[string]string{rest.RequestIDHeader: "not a uuid"})
	if got := resp.Header.Get(rest.RequestIDHeader); got == "not a uuid" {
		t.Error("malformed incoming request id was echoed")
	}
}

func TestRoutes_TokenFromBearerAndCookie(t *testing.T) {
	srv, svc, sm := newServer(t)

	do(t, "GET", srv.URL+"/notes", "", map[string]string{"Authorization": "Bearer abc"})
	if svc.last.Token != "abc" {
		t.Errorf("bearer Token = %q, want abc", svc.last.Token)
	}

	// A login response sets the session cookie.
	resp := do(t, "POST", srv.URL+"/notes", `{"login":true}`, nil)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sm.Name() {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login response did not set the session cookie")
	}

	req, _ := http.NewRequest("GET", srv.URL+"/notes", nil)
	req.AddCookie(cookie)
	cresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with cookie: %v", err)
	}
	cresp.Body.Close()
	if svc.last.Token != "issued-token" {
		t.Errorf("cookie Token = %q, want issued-token", svc.last.Token)
	}

	// A cleared session expires the cookie.
	req, _ = http.NewRequest("DELETE", srv.URL+"/notes", nil)
	req.AddCookie(cookie)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE with cookie: %v", err)
	}
	dresp.Body.Close()
	expired := false
	for _, c := range dresp.Cookies() {
		if c.Name == sm.Name() && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("cleared session did not expire the cookie")
	}
}

func TestRoutes_BodyMethodsRequireJSON(t *testing.T) {
	srv, svc, sm := newServer(t)

	resp := do(t, "POST", srv.URL+"/notes", `{"login":true}`, nil)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sm.Name() {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login response did not set the session cookie")
	}
	svc.data, svc.last = nil, nil

	tests := []struct {
		name        string
		contentType string
		want        int
	}{
		{"text/plain from a foreign page", "text/plain", http.StatusUnsupportedMediaType},
		{"form post", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"multipart", "multipart/form-data; boundary=x", http.StatusUnsupportedMediaType},
		{"json with charset", "application/json; charset=utf-8", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", srv.URL+"/notes", strings.NewReader(`{"text":"x"}`))
			req.Header.Set("Content-Type", tt.contentType)
			req.Header.Set("Origin", "https://elsewhere.example")
			req.AddCookie(cookie)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want != http.StatusCreated {
				if e := decodeError(t, resp); e.Name != "UnsupportedMediaType" {
					t.Errorf("error name = %q", e.Name)
				}
				if svc.last != nil {
					t.Error("rejected request reached the service")
				}
			}
		})
	}

	// No Content-Type at all is rejected too.
	req, _ := http.NewRequest("POST", srv.URL+"/notes", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("missing Content-Type status = %d, want 415", resp.StatusCode)
	}
}
