package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/stats"
	"github.com/surveydesk/surveydesk/internal/survey"
)

// The stats endpoints serve the aggregator's output tables as JSON. Rendering
// (tables, charts, spreadsheet files) is the consumer's business.

func OverviewStatsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, submissions, _, ok := loadReportData(w, r, store, false)
		if !ok {
			return
		}
		writeJSON(w, stats.ComputeOverview(questions, submissions))
	}
}

func QuestionStatsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, submissions, _, ok := loadReportData(w, r, store, false)
		if !ok {
			return
		}
		writeJSON(w, stats.PerQuestion(questions, submissions))
	}
}

func StudentStatsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, submissions, users, ok := loadReportData(w, r, store, true)
		if !ok {
			return
		}
		writeJSON(w, stats.PerStudent(questions, submissions, users))
	}
}

func ClassStatsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, submissions, users, ok := loadReportData(w, r, store, true)
		if !ok {
			return
		}
		writeJSON(w, stats.PerClass(stats.PerStudent(questions, submissions, users)))
	}
}

func loadReportData(w http.ResponseWriter, r *http.Request, store survey.Store, withUsers bool) ([]survey.Question, []survey.Submission, []survey.User, bool) {
	questions, err := store.GetQuestions(r.Context())
	if err != nil {
		logrus.WithError(err).Error("stats: load questions")
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return nil, nil, nil, false
	}
	submissions, err := store.GetSubmissions(r.Context(), "")
	if err != nil {
		logrus.WithError(err).Error("stats: load submissions")
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return nil, nil, nil, false
	}
	var users []survey.User
	if withUsers {
		users, err = store.GetUsers(r.Context(), survey.RoleStudent)
		if err != nil {
			logrus.WithError(err).Error("stats: load users")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return nil, nil, nil, false
		}
	}
	return questions, submissions, users, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
