package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/audit"
)

// EventLister reads back the audit trail. Only the SQL-backed recorder
// implements it; the in-memory store runs without a trail.
type EventLister interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// GET /events?limit=N (admin only, newest first)
func ListEventsHandler(repo EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := repo.List(r.Context(), limit)
		if err != nil {
			logrus.WithError(err).Error("list events: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(events)
	}
}
