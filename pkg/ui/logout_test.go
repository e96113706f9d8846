package ui_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/evaluation-alex/dogstack-agents/pkg/dux"
	"github.com/evaluation-alex/dogstack-agents/pkg/ui"
)

// recorder logs the order of calls made through it.
type recorder struct {
	calls []string
}

func (r *recorder) Authentication() dux.LogOuter { return r }
func (r *recorder) LogOut()                      { r.calls = append(r.calls, "logOut") }

func TestLogOut_OnClickRunsFirst(t *testing.T) {
	rec := &recorder{}
	el := ui.LogOut(ui.LogOutProps{
		Actions: rec,
		OnClick: func(ui.Event) { rec.calls = append(rec.calls, "onClick") },
	})

	if !ui.Click(el, ui.Event{Type: "click"}) {
		t.Fatal("expected the root to have a click handler")
	}
	if len(rec.calls) != 2 || rec.calls[0] != "onClick" || rec.calls[1] != "logOut" {
		t.Errorf("calls: got %v, want [onClick logOut]", rec.calls)
	}
}

func TestLogOut_WithoutOnClick(t *testing.T) {
	rec := &recorder{}
	el := ui.LogOut(ui.LogOutProps{Actions: rec})

	ui.Click(el, ui.Event{Type: "click"})
	if len(rec.calls) != 1 || rec.calls[0] != "logOut" {
		t.Errorf("calls: got %v, want [logOut]", rec.calls)
	}
}

func TestLogOut_Defaults(t *testing.T) {
	el := ui.LogOut(ui.LogOutProps{
		Actions: &recorder{},
		Styles:  map[string]string{"container": "c1", "buttonText": "b1"},
	})

	if el.Type != ui.FlatButton {
		t.Errorf("root type: got %q, want %q", el.Type, ui.FlatButton)
	}
	if v, _ := el.Prop("className"); v != "c1" {
		t.Errorf("className: got %v", v)
	}
	if len(el.Children) != 1 {
		t.Fatalf("children: got %d, want 1", len(el.Children))
	}
	msg := el.Children[0]
	if msg.Type != ui.Message || msg.Props["id"] != ui.LogOutMessageID || msg.Props["className"] != "b1" {
		t.Errorf("message child: %+v", msg)
	}

	custom := ui.LogOut(ui.LogOutProps{Actions: &recorder{}, As: "MenuItem"})
	if custom.Type != "MenuItem" {
		t.Errorf("As: got %q", custom.Type)
	}
}

func TestLogOut_PropForwarding(t *testing.T) {
	rec := &recorder{}
	el := ui.LogOut(ui.LogOutProps{
		Actions: rec,
		Props: map[string]any{
			"data-test": "x",
			"className": "override",
			"styles":    "leak",
			"actions":   "leak",
			"as":        "leak",
			"onClick":   "leak",
		},
	})

	if v, _ := el.Prop("data-test"); v != "x" {
		t.Errorf("data-test: got %v, want x", v)
	}
	if v, _ := el.Prop("className"); v != "override" {
		t.Errorf("className: got %v, want override", v)
	}
	for _, k := range []string{"styles", "actions", "as"} {
		if _, ok := el.Prop(k); ok {
			t.Errorf("prop %q leaked onto the root", k)
		}
	}
	if _, ok := el.Props["onClick"].(ui.ClickHandler); !ok {
		t.Error("onClick must be the component's own handler")
	}

	ui.Click(el, ui.Event{})
	if len(rec.calls) != 1 {
		t.Errorf("calls: got %v", rec.calls)
	}
}

func TestLogOut_DispatchesThroughStore(t *testing.T) {
	var deletes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/authentication" {
			deletes.Add(1)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	caller := dux.NewHTTPCaller(srv.URL, srv.Client())
	caller.SetToken("tok")
	store := dux.NewStore(context.Background(), caller, dux.Authentication().Module)

	el := ui.LogOut(ui.LogOutProps{Actions: store.Bind()})
	ui.Click(el, ui.Event{Type: "click"})
	store.Wait()

	if n := deletes.Load(); n != 1 {
		t.Errorf("DELETE /authentication: got %d, want 1", n)
	}
	if caller.Token() != "" {
		t.Error("expected cached token cleared")
	}
}
