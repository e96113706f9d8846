// Package rest exposes every registered service over HTTP/JSON.
//
// For a service at path P:
//
//	GET    /P        find
//	GET    /P/{id}   get
//	POST   /P        create
//	PUT    /P/{id}   update
//	PATCH  /P/{id}   patch
//	DELETE /P/{id}   remove
//	DELETE /P        remove (no id)
//
// Bodies of create, update and patch must be sent as application/json.
// Browsers preflight such requests cross-site, so a foreign page cannot
// ride on the session cookie with a form or text/plain post.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/limits"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Transport serves an App over REST.
type Transport struct {
	App      *service.App
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func New(app *service.App, sessions *auth.SessionManager, logger *zap.Logger) *Transport {
	return &Transport{App: app, Sessions: sessions, Log: logger}
}

// Routes returns a router with one subtree per registered service.
func (t *Transport) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.NotFound(t.notFound)
	r.MethodNotAllowed(t.methodNotAllowed)

	for _, path := range t.App.Paths() {
		methods := t.App.Methods(path)
		path := path
		r.Route("/"+path, func(sr chi.Router) {
			sr.NotFound(t.notFound)
			sr.MethodNotAllowed(t.methodNotAllowed)
			for _, m := range methods {
				h := t.handle(path, m)
				switch m {
				case service.MethodFind:
					sr.Get("/", h)
				case service.MethodGet:
					sr.Get("/{id}", h)
				case service.MethodCreate:
					sr.Post("/", h)
				case service.MethodUpdate:
					sr.Put("/{id}", h)
				case service.MethodPatch:
					sr.Patch("/{id}", h)
				case service.MethodRemove:
					sr.Delete("/", h)
					sr.Delete("/{id}", h)
				}
			}
		})
	}
	return r
}

func (t *Transport) handle(path string, m service.Method) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), t.Log, path+"."+string(m))
		defer cancel()

		var data map[string]any
		if m == service.MethodCreate || m == service.MethodUpdate || m == service.MethodPatch {
			var err error
			if err = requireJSON(r); err != nil {
				t.writeError(w, r, err)
				return
			}
			if data, err = decodeBody(w, r); err != nil {
				t.writeError(w, r, err)
				return
			}
		}

		params := &service.Params{
			Provider:  service.ProviderREST,
			Query:     queryParams(r),
			Token:     t.Sessions.Token(r),
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		}
		res, err := t.App.Call(ctx, service.Call{
			Path:   path,
			Method: m,
			ID:     chi.URLParam(r, "id"),
			Data:   data,
			Params: params,
		})
		if err != nil {
			t.writeError(w, r, err)
			return
		}

		t.applySession(w, r, params.Session)
		status := http.StatusOK
		if m == service.MethodCreate {
			status = http.StatusCreated
		}
		writeJSON(w, status, res)
	}
}

// applySession mirrors token changes into the session cookie. Bearer
// clients read the token from the response body instead.
func (t *Transport) applySession(w http.ResponseWriter, r *http.Request, sc service.SessionChange) {
	switch {
	case sc.Cleared:
		if err := t.Sessions.Clear(w, r); err != nil {
			t.Log.Error("clear session cookie", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		}
	case sc.Issued != "":
		if err := t.Sessions.SaveToken(w, r, sc.Issued); err != nil {
			t.Log.Error("save session cookie", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		}
	}
}

func requireJSON(r *http.Request) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return service.UnsupportedMedia("request body must be sent as application/json")
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var data map[string]any
	err := json.NewDecoder(body).Decode(&data)
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return map[string]any{}, nil
	case errors.As(err, &tooBig):
		return nil, service.BadRequest("request body exceeds %d bytes", limits.MaxJSONBodySize)
	case err != nil:
		return nil, service.BadRequest("request body must be a JSON object")
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func queryParams(r *http.Request) map[string]string {
	q := r.URL.Query()
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		if len(v) > limits.MaxQueryValueLength {
			v = v[:limits.MaxQueryValueLength]
		}
		out[k] = v
	}
	return out
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (t *Transport) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := service.AsError(err)
	fields := []zap.Field{
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", e.Code),
		zap.Error(err),
	}
	if e.Code >= http.StatusInternalServerError {
		t.Log.Error("request failed", fields...)
	} else {
		t.Log.Debug("request rejected", fields...)
	}
	writeJSON(w, e.Code, e)
}

func (t *Transport) notFound(w http.ResponseWriter, r *http.Request) {
	t.writeError(w, r, service.NotFound("no route for %s", r.URL.Path))
}

func (t *Transport) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	t.writeError(w, r, service.MethodNotAllowed("%s is not allowed on %s", r.Method, r.URL.Path))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
