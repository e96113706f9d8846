package dux

import (
	"context"
	"sync"
)

// Store holds State per module, folds dispatched actions through each
// Updater and runs each Epic against a Caller.
type Store struct {
	ctx     context.Context
	caller  Caller
	modules map[string]*Module

	mu     sync.RWMutex
	states map[string]State
	subs   []func(Action)

	wg sync.WaitGroup
}

// NewStore registers modules. Names must be unique; a later module with
// the same name replaces the earlier one.
func NewStore(ctx context.Context, caller Caller, modules ...*Module) *Store {
	s := &Store{
		ctx:     ctx,
		caller:  caller,
		modules: make(map[string]*Module, len(modules)),
		states:  make(map[string]State, len(modules)),
	}
	for _, m := range modules {
		s.modules[m.Name] = m
		s.states[m.Name] = State{}
	}
	return s
}

// Subscribe registers fn to see every action after it is reduced.
func (s *Store) Subscribe(fn func(Action)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Dispatch reduces a and starts the matching epic, if any. Result actions
// are dispatched when their call finishes.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	for name, m := range s.modules {
		s.states[name] = m.Updater(s.states[name], a)
	}
	subs := append([]func(Action){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(a)
	}

	for _, m := range s.modules {
		if s.caller == nil || !m.Epic.Handles(a) {
			continue
		}
		s.wg.Add(1)
		go func(e Epic, start Action) {
			defer s.wg.Done()
			s.Dispatch(e.Run(s.ctx, s.caller, start))
		}(m.Epic, a)
	}
}

// Wait blocks until every call started so far has been reduced.
func (s *Store) Wait() {
	s.wg.Wait()
}

// State returns the current state of the named module.
func (s *Store) State(name string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[name]
}

// LogOuter ends the current session.
type LogOuter interface {
	LogOut()
}

// Bound exposes action creators that dispatch straight into a Store.
type Bound struct {
	s *Store
}

// Bind returns creators bound to s.
func (s *Store) Bind() Bound {
	return Bound{s: s}
}

// Authentication returns the bound authentication actions.
func (b Bound) Authentication() LogOuter {
	return boundAuth{s: b.s, m: Authentication()}
}

type boundAuth struct {
	s *Store
	m *AuthModule
}

func (b boundAuth) LogOut() {
	b.s.Dispatch(b.m.LogOut())
}
