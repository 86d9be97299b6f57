package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/audit"
	authmw "github.com/surveydesk/surveydesk/internal/auth/middleware"
	"github.com/surveydesk/surveydesk/internal/rbac"
	"github.com/surveydesk/surveydesk/internal/survey"
)

// POST /submissions {"responses":{"<questionID>":["option text", ...]}}
// The attempt limit is re-checked by the store immediately before the insert;
// a 409 means nothing was recorded.
func CreateSubmissionHandler(store survey.Store, gov *survey.Governor, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := authmw.SubjectFromContext(r.Context())
		if email == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Responses map[string][]string `json:"responses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub, err := store.SaveSubmission(r.Context(), email, req.Responses)
		if err != nil {
			if errors.Is(err, survey.ErrAttemptsExhausted) {
				http.Error(w, "maximum attempts reached", http.StatusConflict)
				return
			}
			logrus.WithError(err).WithField("email", email).Error("save submission: store failure")
			http.Error(w, "submission failed", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypeSubmissionAccepted, sub.ID,
			map[string]any{"user_email": email, "score": sub.Score})

		remaining, err := gov.RemainingAttempts(r.Context(), email)
		if err != nil {
			remaining = 0
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 sub.ID,
			"created_at":         sub.CreatedAt,
			"score":              sub.Score,
			"remaining_attempts": remaining,
		})
	}
}

// GET /submissions?user_email=...
// Callers without submission:view-all are forced to their own submissions.
func ListSubmissionsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		userEmail := strings.TrimSpace(r.URL.Query().Get("user_email"))
		if role != survey.RoleAdmin {
			userEmail = sub
		}
		list, err := store.GetSubmissions(r.Context(), userEmail)
		if err != nil {
			logrus.WithError(err).Error("list submissions: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []survey.Submission{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /submissions/{submissionID}
// Replays the scoring breakdown for one submission against the current
// catalog. Non-admins can only inspect their own.
func SubmissionDetailHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		list, err := store.GetSubmissions(r.Context(), "")
		if err != nil {
			logrus.WithError(err).Error("submission detail: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		var sub *survey.Submission
		for i := range list {
			if list[i].ID == id {
				sub = &list[i]
				break
			}
		}
		if sub == nil {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}
		isAdmin := rbac.RoleFromContext(r.Context()) == survey.RoleAdmin
		if !isAdmin && sub.UserEmail != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		questions, err := store.GetQuestions(r.Context())
		if err != nil {
			logrus.WithError(err).Error("submission detail: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		total, results := survey.Score(questions, sub.Responses)
		if !isAdmin {
			// keep the answer key out of reach while attempts remain
			for key, res := range results {
				res.Expected = nil
				results[key] = res
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"submission": sub,
			"results":    results,
			"total":      total,
		})
	}
}

// GET /attempts/remaining
func RemainingAttemptsHandler(gov *survey.Governor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := authmw.SubjectFromContext(r.Context())
		if email == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		remaining, err := gov.RemainingAttempts(r.Context(), email)
		if err != nil {
			logrus.WithError(err).Error("remaining attempts: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{
			"remaining":    remaining,
			"max_attempts": gov.MaxAttempts(),
		})
	}
}
