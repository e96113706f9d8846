package dux

import (
	"context"
	"sync"
)

// Caller performs one service call and returns the decoded JSON result.
type Caller interface {
	Call(ctx context.Context, service string, r Request) (any, error)
}

// Epic turns this module's start actions into calls.
type Epic struct {
	name string
}

// Handles reports whether a is a start action for this module.
func (e Epic) Handles(a Action) bool {
	name, _, phase, ok := ParseType(a.Type)
	return ok && name == e.name && phase == Start
}

// Run calls c for a start action and returns the complete or error action.
func (e Epic) Run(ctx context.Context, c Caller, start Action) Action {
	acts := Actions{name: e.name}
	res, err := c.Call(ctx, e.name, start.Request)
	if err != nil {
		return acts.Error(start, err)
	}
	return acts.Complete(start, res)
}

// Stream reads actions from in and emits one result action per start action
// it handles. Calls run concurrently. The output closes once in is closed
// (or ctx is done) and every call has finished.
func (e Epic) Stream(ctx context.Context, c Caller, in <-chan Action) <-chan Action {
	out := make(chan Action)
	var wg sync.WaitGroup

	go func() {
		defer func() {
			wg.Wait()
			close(out)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case a, ok := <-in:
				if !ok {
					return
				}
				if !e.Handles(a) {
					continue
				}
				wg.Add(1)
				go func(start Action) {
					defer wg.Done()
					res := e.Run(ctx, c, start)
					select {
					case out <- res:
					case <-ctx.Done():
					}
				}(a)
			}
		}
	}()
	return out
}
