// internal/app/features/auditlog/list.go
package auditlog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evaluation-alex/dogstack-agents/internal/app/hooks"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const pageSize = 50

// listItem is a single audit event as returned to its agent.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorID       string            `json:"actorId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listData struct {
	Items   []listItem `json:"data"`
	Page    int        `json:"page"`
	HasNext bool       `json:"hasNext"`
}

// ServeList handles GET /audit: the caller's own audit events, newest first.
//
// Query parameters: category, event_type, start_date and end_date
// (YYYY-MM-DD, end inclusive) and page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit list")
	defer cancel()

	token := h.SessionMgr.Token(r)
	if token == "" {
		writeError(w, service.NotAuthenticated("not logged in"))
		return
	}
	agent, err := h.Agents.ResolveAgent(ctx, token)
	if errors.Is(err, hooks.ErrUnresolved) {
		writeError(w, service.NotAuthenticated("not logged in"))
		return
	}
	if err != nil {
		h.Log.Error("audit list: resolve agent", zap.Error(err))
		writeError(w, service.GeneralError("could not identify caller"))
		return
	}

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		AgentID:   &agent.ID,
		Category:  category,
		EventType: eventType,
		// One extra row tells us whether there is a next page.
		Limit:  pageSize + 1,
		Offset: int64((page - 1) * pageSize),
	}
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			writeError(w, service.BadRequest("start_date must be YYYY-MM-DD"))
			return
		}
		filter.StartTime = &t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			writeError(w, service.BadRequest("end_date must be YYYY-MM-DD"))
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		writeError(w, service.GeneralError("could not load audit events"))
		return
	}

	data := listData{Items: make([]listItem, 0, len(events)), Page: page}
	if len(events) > pageSize {
		events = events[:pageSize]
		data.HasNext = true
	}
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
		}
		data.Items = append(data.Items, item)
	}

	writeJSON(w, http.StatusOK, data)
}

func writeError(w http.ResponseWriter, err error) {
	e := service.AsError(err)
	writeJSON(w, e.Code, e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
