// Package dux builds client-side state slices for the agents services.
//
// A Module is generated from nothing but a service name and bundles
// action creators, an Updater that folds actions into State, and an Epic
// that turns start actions into calls against a Caller.
package dux

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Method is a service method as seen by clients.
type Method string

const (
	Find   Method = "find"
	Get    Method = "get"
	Create Method = "create"
	Update Method = "update"
	Patch  Method = "patch"
	Remove Method = "remove"
)

// Methods lists every method in a stable order.
var Methods = []Method{Find, Get, Create, Update, Patch, Remove}

// Phase is the stage of a call an action reports.
type Phase string

const (
	Start    Phase = "START"
	Complete Phase = "COMPLETE"
	Failed   Phase = "ERROR"
)

// Request describes one service call.
type Request struct {
	Method Method            `json:"method"`
	ID     string            `json:"id,omitempty"`
	Data   map[string]any    `json:"data,omitempty"`
	Query  map[string]string `json:"query,omitempty"`
}

// Action is dispatched to Updaters and Epics. Cid ties the start of a call
// to its complete or error action.
type Action struct {
	Type    string
	Cid     string
	Request Request
	Result  any
	Err     error
}

// Module is the slice generated for one service.
type Module struct {
	Name    string
	Actions Actions
	Updater func(State, Action) State
	Epic    Epic
}

// New returns the module for service name. The shape is identical for
// every name.
func New(name string) *Module {
	name = strings.Trim(name, "/")
	m := &Module{Name: name, Actions: Actions{name: name}}
	m.Updater = m.update
	m.Epic = Epic{name: name}
	return m
}

// ActionType returns "<name>/<METHOD>_<PHASE>", e.g. "agents/FIND_START".
func ActionType(name string, m Method, p Phase) string {
	return fmt.Sprintf("%s/%s_%s", name, strings.ToUpper(string(m)), p)
}

// SetType is the action type that writes a record without a call.
func SetType(name string) string {
	return name + "/SET"
}

// ParseType splits an action type produced by ActionType.
func ParseType(t string) (name string, m Method, p Phase, ok bool) {
	i := strings.LastIndex(t, "/")
	if i <= 0 {
		return "", "", "", false
	}
	name, rest := t[:i], t[i+1:]
	j := strings.LastIndex(rest, "_")
	if j <= 0 {
		return "", "", "", false
	}
	m = Method(strings.ToLower(rest[:j]))
	p = Phase(rest[j+1:])
	switch p {
	case Start, Complete, Failed:
	default:
		return "", "", "", false
	}
	for _, known := range Methods {
		if m == known {
			return name, m, p, true
		}
	}
	return "", "", "", false
}

// Actions creates start actions for one service. Each call gets a new cid.
type Actions struct {
	name string
}

func (a Actions) start(r Request) Action {
	return Action{
		Type:    ActionType(a.name, r.Method, Start),
		Cid:     uuid.NewString(),
		Request: r,
	}
}

func (a Actions) Find(query map[string]string) Action {
	return a.start(Request{Method: Find, Query: query})
}

func (a Actions) Get(id string) Action {
	return a.start(Request{Method: Get, ID: id})
}

func (a Actions) Create(data map[string]any) Action {
	return a.start(Request{Method: Create, Data: data})
}

func (a Actions) Update(id string, data map[string]any) Action {
	return a.start(Request{Method: Update, ID: id, Data: data})
}

func (a Actions) Patch(id string, data map[string]any) Action {
	return a.start(Request{Method: Patch, ID: id, Data: data})
}

func (a Actions) Remove(id string) Action {
	return a.start(Request{Method: Remove, ID: id})
}

// Set stores a record locally without calling the service.
func (a Actions) Set(id string, record map[string]any) Action {
	return Action{Type: SetType(a.name), Request: Request{ID: id}, Result: record}
}

// Complete reports the result of the call started by start.
func (a Actions) Complete(start Action, result any) Action {
	return Action{
		Type:    ActionType(a.name, start.Request.Method, Complete),
		Cid:     start.Cid,
		Request: start.Request,
		Result:  result,
	}
}

// Error reports the failure of the call started by start.
func (a Actions) Error(start Action, err error) Action {
	return Action{
		Type:    ActionType(a.name, start.Request.Method, Failed),
		Cid:     start.Cid,
		Request: start.Request,
		Err:     err,
	}
}
