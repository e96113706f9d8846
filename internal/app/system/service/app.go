package service

import (
	"context"

	"go.uber.org/zap"
)

type handlerFunc func(ctx context.Context, hc *Context) (any, error)

type chain struct {
	before []Hook
	after  []Hook
	handle handlerFunc
}

type endpoint struct {
	path   string
	chains map[Method]*chain
}

// App is the frozen application built by a Registry. It is safe for
// concurrent use; each call owns its own Context.
type App struct {
	log      *zap.Logger
	paths    []string
	services map[string]*endpoint
}

// Call describes one operation.
type Call struct {
	Path   string
	Method Method
	ID     string
	Data   map[string]any
	Params *Params
}

// Paths lists the registered services in registration order.
func (a *App) Paths() []string {
	return append([]string(nil), a.paths...)
}

// Methods lists the methods the service at path implements.
func (a *App) Methods(path string) []Method {
	ep, ok := a.services[cleanPath(path)]
	if !ok {
		return nil
	}
	var out []Method
	for _, m := range Methods {
		if _, ok := ep.chains[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Call runs c through its chain and returns the final result.
func (a *App) Call(ctx context.Context, c Call) (any, error) {
	path := cleanPath(c.Path)
	ep, ok := a.services[path]
	if !ok {
		return nil, NotFound("no service registered at %q", path)
	}
	ch, ok := ep.chains[c.Method]
	if !ok {
		return nil, MethodNotAllowed("method %q is not allowed on %s", c.Method, path)
	}

	params := c.Params
	if params == nil {
		params = &Params{}
	}
	if params.Query == nil {
		params.Query = map[string]string{}
	}
	hc := &Context{
		App:    a,
		Path:   path,
		Method: c.Method,
		ID:     c.ID,
		Data:   c.Data,
		Params: params,
	}

	res, err := ch.run(ctx, hc)
	if err != nil {
		a.log.Debug("service call failed",
			zap.String("path", path),
			zap.String("method", string(c.Method)),
			zap.String("provider", params.Provider),
			zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (c *chain) run(ctx context.Context, hc *Context) (any, error) {
	hc.Phase = PhaseBefore
	for i, h := range c.before {
		if err := h.Run(ctx, hc); err != nil {
			return nil, &HookError{Path: hc.Path, Method: hc.Method, Phase: PhaseBefore, Index: i, Err: err}
		}
	}

	if hc.Result == nil {
		hc.Phase = PhaseHandler
		res, err := c.handle(ctx, hc)
		if err != nil {
			return nil, &HookError{Path: hc.Path, Method: hc.Method, Phase: PhaseHandler, Err: err}
		}
		hc.Result = res
	}

	hc.Phase = PhaseAfter
	for i, h := range c.after {
		if err := h.Run(ctx, hc); err != nil {
			return nil, &HookError{Path: hc.Path, Method: hc.Method, Phase: PhaseAfter, Index: i, Err: err}
		}
	}
	return hc.Result, nil
}

func implemented(svc any) []Method {
	var out []Method
	if _, ok := svc.(Finder); ok {
		out = append(out, MethodFind)
	}
	if _, ok := svc.(Getter); ok {
		out = append(out, MethodGet)
	}
	if _, ok := svc.(Creator); ok {
		out = append(out, MethodCreate)
	}
	if _, ok := svc.(Updater); ok {
		out = append(out, MethodUpdate)
	}
	if _, ok := svc.(Patcher); ok {
		out = append(out, MethodPatch)
	}
	if _, ok := svc.(Remover); ok {
		out = append(out, MethodRemove)
	}
	return out
}

func handlerFor(svc any, m Method) handlerFunc {
	switch m {
	case MethodFind:
		s := svc.(Finder)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Find(ctx, hc.Params)
		}
	case MethodGet:
		s := svc.(Getter)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Get(ctx, hc.ID, hc.Params)
		}
	case MethodCreate:
		s := svc.(Creator)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Create(ctx, hc.Data, hc.Params)
		}
	case MethodUpdate:
		s := svc.(Updater)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Update(ctx, hc.ID, hc.Data, hc.Params)
		}
	case MethodPatch:
		s := svc.(Patcher)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Patch(ctx, hc.ID, hc.Data, hc.Params)
		}
	default:
		s := svc.(Remover)
		return func(ctx context.Context, hc *Context) (any, error) {
			return s.Remove(ctx, hc.ID, hc.Params)
		}
	}
}

// Client calls one service through the App. Hooks use it for
// cross-resource work; calls made this way are internal (no provider)
// unless the caller passes Params saying otherwise.
type Client struct {
	app  *App
	path string
}

// Service returns a Client for path.
func (a *App) Service(path string) Client {
	return Client{app: a, path: cleanPath(path)}
}

func (c Client) Find(ctx context.Context, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodFind, Params: params})
}

func (c Client) Get(ctx context.Context, id string, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodGet, ID: id, Params: params})
}

func (c Client) Create(ctx context.Context, data map[string]any, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodCreate, Data: data, Params: params})
}

func (c Client) Update(ctx context.Context, id string, data map[string]any, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodUpdate, ID: id, Data: data, Params: params})
}

func (c Client) Patch(ctx context.Context, id string, data map[string]any, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodPatch, ID: id, Data: data, Params: params})
}

func (c Client) Remove(ctx context.Context, id string, params *Params) (any, error) {
	return c.app.Call(ctx, Call{Path: c.path, Method: MethodRemove, ID: id, Params: params})
}
