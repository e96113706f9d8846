package dux_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/evaluation-alex/dogstack-agents/pkg/dux"
)

func TestNew_UniformShape(t *testing.T) {
	for _, name := range []string{"agents", "relationships", "/profiles/"} {
		m := dux.New(name)
		if m.Updater == nil {
			t.Fatalf("%s: nil updater", name)
		}
		a := m.Actions.Find(nil)
		want := dux.ActionType(m.Name, dux.Find, dux.Start)
		if a.Type != want {
			t.Errorf("%s: Find type got %q, want %q", name, a.Type, want)
		}
		if a.Cid == "" {
			t.Errorf("%s: expected a correlation id", name)
		}
	}
	if got := dux.New("/profiles/").Name; got != "profiles" {
		t.Errorf("Name: got %q, want profiles", got)
	}
}

func TestActionType_RoundTrip(t *testing.T) {
	for _, m := range dux.Methods {
		for _, p := range []dux.Phase{dux.Start, dux.Complete, dux.Failed} {
			typ := dux.ActionType("relationships", m, p)
			name, gm, gp, ok := dux.ParseType(typ)
			if !ok || name != "relationships" || gm != m || gp != p {
				t.Errorf("ParseType(%q) = %q %q %q %v", typ, name, gm, gp, ok)
			}
		}
	}
	for _, bad := range []string{"", "agents", "agents/SET", "agents/FIND_DONE", "agents/JUMP_START"} {
		if _, _, _, ok := dux.ParseType(bad); ok {
			t.Errorf("ParseType(%q): expected !ok", bad)
		}
	}
}

func TestUpdater(t *testing.T) {
	m := dux.New("profiles")
	other := dux.New("agents")

	var s dux.State
	start := m.Actions.Find(nil)
	s = m.Updater(s, start)
	if s.Requests[start.Cid].Status != dux.Pending {
		t.Fatalf("expected pending request, got %+v", s.Requests[start.Cid])
	}

	before := s
	s = m.Updater(s, m.Actions.Complete(start, []any{
		map[string]any{"id": "p1", "name": "Rex"},
		map[string]any{"id": "p2", "name": "Fido"},
	}))
	if len(before.Records) != 0 {
		t.Error("updater modified the previous state")
	}
	if s.Requests[start.Cid].Status != dux.Succeeded || len(s.Records) != 2 {
		t.Fatalf("after find: %+v", s)
	}

	patch := m.Actions.Patch("p1", map[string]any{"name": "Rex II"})
	s = m.Updater(s, patch)
	s = m.Updater(s, m.Actions.Complete(patch, map[string]any{"id": "p1", "name": "Rex II"}))
	if rec, _ := s.Record("p1"); rec["name"] != "Rex II" {
		t.Errorf("after patch: %v", rec)
	}

	rm := m.Actions.Remove("p2")
	s = m.Updater(s, m.Actions.Complete(rm, map[string]any{"id": "p2"}))
	if _, ok := s.Record("p2"); ok {
		t.Error("expected p2 removed")
	}

	fail := m.Actions.Get("p9")
	s = m.Updater(s, m.Actions.Error(fail, errors.New("nope")))
	if r := s.Requests[fail.Cid]; r.Status != dux.Errored || r.Err != "nope" {
		t.Errorf("after error: %+v", r)
	}

	s = m.Updater(s, m.Actions.Set("p3", map[string]any{"id": "p3"}))
	if _, ok := s.Record("p3"); !ok {
		t.Error("expected Set to store p3")
	}

	same := m.Updater(s, other.Actions.Find(nil))
	if len(same.Requests) != len(s.Requests) {
		t.Error("updater reacted to another module's action")
	}
}

type fakeCaller struct {
	mu    sync.Mutex
	calls []dux.Request
	err   error
}

func (f *fakeCaller) Call(ctx context.Context, service string, r dux.Request) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, r)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"id": r.ID, "service": service}, nil
}

func TestEpic_Stream(t *testing.T) {
	m := dux.New("relationships")
	fc := &fakeCaller{}

	in := make(chan dux.Action)
	out := m.Epic.Stream(context.Background(), fc, in)

	go func() {
		in <- m.Actions.Get("r1")
		in <- dux.New("agents").Actions.Get("a1") // ignored
		in <- m.Actions.Set("r2", map[string]any{"id": "r2"})
		in <- m.Actions.Remove("r3")
		close(in)
	}()

	var got []dux.Action
	for a := range out {
		got = append(got, a)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 result actions, got %d", len(got))
	}
	for _, a := range got {
		_, _, p, ok := dux.ParseType(a.Type)
		if !ok || p != dux.Complete {
			t.Errorf("unexpected action %q", a.Type)
		}
	}
}

func TestEpic_RunError(t *testing.T) {
	m := dux.New("agents")
	start := m.Actions.Create(map[string]any{"email": "x"})
	res := m.Epic.Run(context.Background(), &fakeCaller{err: errors.New("down")}, start)

	if res.Type != dux.ActionType("agents", dux.Create, dux.Failed) || res.Cid != start.Cid {
		t.Errorf("got %+v", res)
	}
}

// fakeServer mimics the REST transport for the authentication and agents
// services.
func fakeServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["password"] != "correct-horse" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"name":"NotAuthenticated","message":"invalid login","code":401}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"accessToken":"tok-1","agentId":"a1","sessionId":"s1"}`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"agentId":"a1","sessionId":"s1"}`))
		}
	})
	mux.HandleFunc("/agents/a1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"a1"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func TestHTTPCaller_TokenLifecycle(t *testing.T) {
	srv, seen := fakeServer(t)
	c := dux.NewHTTPCaller(srv.URL+"/", srv.Client())
	ctx := context.Background()
	auth := dux.Authentication()

	_, err := c.Call(ctx, dux.AuthenticationPath, auth.LogIn("rex@example.com", "wrong").Request)
	var apiErr *dux.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusUnauthorized || apiErr.Name != "NotAuthenticated" {
		t.Fatalf("bad login: got %v", err)
	}
	if c.Token() != "" {
		t.Error("failed login must not set a token")
	}

	if _, err := c.Call(ctx, dux.AuthenticationPath, auth.LogIn("rex@example.com", "correct-horse").Request); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Token() != "tok-1" {
		t.Fatalf("token: got %q", c.Token())
	}

	res, err := c.Call(ctx, "agents", dux.New("agents").Actions.Get("a1").Request)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec, _ := res.(map[string]any); rec["id"] != "a1" {
		t.Errorf("get result: %v", res)
	}

	if _, err := c.Call(ctx, dux.AuthenticationPath, auth.LogOut().Request); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.Token() != "" {
		t.Error("expected logout to clear the token")
	}

	want := []string{"POST ", "POST ", "GET Bearer tok-1", "DELETE Bearer tok-1"}
	got := seen()
	if len(got) != len(want) {
		t.Fatalf("requests: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHTTPCaller_NeedsID(t *testing.T) {
	c := dux.NewHTTPCaller("http://127.0.0.1:0", nil)
	if _, err := c.Call(context.Background(), "agents", dux.Request{Method: dux.Patch}); err == nil {
		t.Error("expected patch without id to fail")
	}
}

func TestStore_BoundLogOut(t *testing.T) {
	srv, _ := fakeServer(t)
	c := dux.NewHTTPCaller(srv.URL, srv.Client())
	c.SetToken("tok-1")

	auth := dux.Authentication()
	store := dux.NewStore(context.Background(), c, auth.Module, dux.New("agents"))

	var mu sync.Mutex
	var types []string
	store.Subscribe(func(a dux.Action) {
		mu.Lock()
		types = append(types, a.Type)
		mu.Unlock()
	})

	store.Bind().Authentication().LogOut()

	done := make(chan struct{})
	go func() { store.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("log out never completed")
	}

	if c.Token() != "" {
		t.Error("expected token cleared")
	}
	mu.Lock()
	defer mu.Unlock()
	want := []string{"authentication/REMOVE_START", "authentication/REMOVE_COMPLETE"}
	if len(types) != 2 || types[0] != want[0] || types[1] != want[1] {
		t.Errorf("actions: got %v, want %v", types, want)
	}
	for _, r := range store.State(dux.AuthenticationPath).Requests {
		if r.Status != dux.Succeeded {
			t.Errorf("request status: %+v", r)
		}
	}
}

func TestHTTPCaller_BodyMethodsSendJSON(t *testing.T) {
	var mu sync.Mutex
	got := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got[r.Method] = r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	c := dux.NewHTTPCaller(srv.URL+"/", srv.Client())
	m := dux.New("agents")

	for _, r := range []dux.Request{
		m.Actions.Create(nil).Request,
		m.Actions.Patch("a1", nil).Request,
		m.Actions.Get("a1").Request,
	} {
		if _, err := c.Call(context.Background(), "agents", r); err != nil {
			t.Fatalf("%s: %v", r.Method, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, method := range []string{http.MethodPost, http.MethodPatch} {
		if got[method] != "application/json" {
			t.Errorf("%s Content-Type = %q, want application/json", method, got[method])
		}
	}
	if got[http.MethodGet] != "" {
		t.Errorf("GET Content-Type = %q, want none", got[http.MethodGet])
	}
}
