package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/survey"
)

// GET /users?role=Student
func ListUsersHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := strings.TrimSpace(r.URL.Query().Get("role"))
		users, err := store.GetUsers(r.Context(), role)
		if err != nil {
			logrus.WithError(err).Error("list users: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		if users == nil {
			users = []survey.User{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(users)
	}
}
