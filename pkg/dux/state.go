package dux

// Status of a tracked call.
type Status string

const (
	Pending   Status = "pending"
	Succeeded Status = "complete"
	Errored   Status = "error"
)

// RequestState tracks one call by cid.
type RequestState struct {
	Method Method
	ID     string
	Status Status
	Err    string
}

// State is the client-side view of one service. Updaters never modify a
// State in place; they return a new one.
type State struct {
	Records  map[string]map[string]any
	Requests map[string]RequestState
}

// Record returns the record with id, if loaded.
func (s State) Record(id string) (map[string]any, bool) {
	r, ok := s.Records[id]
	return r, ok
}

func (s State) clone() State {
	out := State{
		Records:  make(map[string]map[string]any, len(s.Records)),
		Requests: make(map[string]RequestState, len(s.Requests)),
	}
	for k, v := range s.Records {
		out.Records[k] = v
	}
	for k, v := range s.Requests {
		out.Requests[k] = v
	}
	return out
}

// update folds actions for this module into s. Actions for other modules
// return s unchanged.
func (m *Module) update(s State, a Action) State {
	if a.Type == SetType(m.Name) {
		rec, _ := a.Result.(map[string]any)
		if a.Request.ID == "" || rec == nil {
			return s
		}
		out := s.clone()
		out.Records[a.Request.ID] = rec
		return out
	}

	name, method, phase, ok := ParseType(a.Type)
	if !ok || name != m.Name {
		return s
	}

	out := s.clone()
	switch phase {
	case Start:
		out.Requests[a.Cid] = RequestState{Method: method, ID: a.Request.ID, Status: Pending}
	case Failed:
		msg := ""
		if a.Err != nil {
			msg = a.Err.Error()
		}
		out.Requests[a.Cid] = RequestState{Method: method, ID: a.Request.ID, Status: Errored, Err: msg}
	case Complete:
		out.Requests[a.Cid] = RequestState{Method: method, ID: a.Request.ID, Status: Succeeded}
		applyResult(out.Records, method, a)
	}
	return out
}

func applyResult(records map[string]map[string]any, method Method, a Action) {
	switch method {
	case Find:
		for _, rec := range asRecords(a.Result) {
			if id := recordID(rec); id != "" {
				records[id] = rec
			}
		}
	case Remove:
		if rec, ok := a.Result.(map[string]any); ok {
			if id := recordID(rec); id != "" {
				delete(records, id)
			}
		}
		if a.Request.ID != "" {
			delete(records, a.Request.ID)
		}
	default:
		if rec, ok := a.Result.(map[string]any); ok {
			if id := recordID(rec); id != "" {
				records[id] = rec
			}
		}
	}
}

func asRecords(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			if rec, ok := e.(map[string]any); ok {
				out = append(out, rec)
			}
		}
		return out
	}
	return nil
}

func recordID(rec map[string]any) string {
	id, _ := rec["id"].(string)
	return id
}
