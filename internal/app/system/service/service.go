// Package service is the composition root for resource modules.
//
// A Registry collects resource handlers ("services") and hook chains while
// the application starts. Build freezes it into an App whose per-path,
// per-method chains are composed once:
//
//	global before (all, method) → resource before (all, method) →
//	handler → resource after (all, method) → global after (all, method)
//
// The first failing step ends the call. Its error is returned wrapped in a
// *HookError and no later step runs.
package service

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
)

// Method names a service operation.
type Method string

const (
	MethodAll    Method = "all" // hook map key matching every method
	MethodFind   Method = "find"
	MethodGet    Method = "get"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
	MethodPatch  Method = "patch"
	MethodRemove Method = "remove"
)

// Methods lists the callable methods in canonical order.
var Methods = []Method{MethodFind, MethodGet, MethodCreate, MethodUpdate, MethodPatch, MethodRemove}

// Valid reports whether m is a callable method (MethodAll is not).
func (m Method) Valid() bool {
	for _, v := range Methods {
		if m == v {
			return true
		}
	}
	return false
}

// Phase identifies where in the chain a step runs.
type Phase string

const (
	PhaseBefore  Phase = "before"
	PhaseHandler Phase = "handler"
	PhaseAfter   Phase = "after"
)

// A service implements any subset of the method interfaces below.
// Calling a method it does not implement fails with MethodNotAllowed.

type Finder interface {
	Find(ctx context.Context, params *Params) (any, error)
}

type Getter interface {
	Get(ctx context.Context, id string, params *Params) (any, error)
}

type Creator interface {
	Create(ctx context.Context, data map[string]any, params *Params) (any, error)
}

type Updater interface {
	Update(ctx context.Context, id string, data map[string]any, params *Params) (any, error)
}

type Patcher interface {
	Patch(ctx context.Context, id string, data map[string]any, params *Params) (any, error)
}

type Remover interface {
	Remove(ctx context.Context, id string, params *Params) (any, error)
}

// ProviderREST marks calls that arrived over the REST transport.
const ProviderREST = "rest"

// SessionChange records token changes made while serving a call. The
// transport applies them to its own session storage after success.
type SessionChange struct {
	Issued  string // new token to hand to the caller
	Cleared bool   // caller's token is no longer valid
}

// Params is the mutable per-call parameter bag.
type Params struct {
	// Provider is empty for internal calls.
	Provider string
	Query    map[string]string
	// Token is the transport-level credential, if any.
	Token string
	// CurrentAgent is set by the global AddCurrentAgent hook; nil means
	// the caller is not authenticated.
	CurrentAgent *models.Agent
	Session      SessionChange

	// IP and UserAgent describe the remote caller for external calls.
	IP        string
	UserAgent string

	values map[string]any
}

// External reports whether the call came through a transport.
func (p *Params) External() bool {
	return p.Provider != ""
}

// Authenticated reports whether a current agent was resolved.
func (p *Params) Authenticated() bool {
	return p.CurrentAgent != nil
}

// Set stores a value for later steps of the same call.
func (p *Params) Set(key string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[key] = v
}

// Value returns a value stored with Set.
func (p *Params) Value(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Context is the state of one call as it moves through its chain.
type Context struct {
	App    *App
	Path   string
	Method Method
	Phase  Phase
	ID     string
	Data   map[string]any
	Params *Params

	// Result is the handler's return value once Phase is PhaseAfter.
	// A before hook that sets Result skips the handler.
	Result any
}
