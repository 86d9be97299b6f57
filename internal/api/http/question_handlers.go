package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/audit"
	"github.com/surveydesk/surveydesk/internal/rbac"
	"github.com/surveydesk/surveydesk/internal/survey"
)

// GET /questions
// Students receive the catalog with the correct-index set stripped; admins get
// the full records.
func ListQuestionsHandler(store survey.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.GetQuestions(r.Context())
		if err != nil {
			logrus.WithError(err).Error("list questions: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) != survey.RoleAdmin {
			for i := range qs {
				qs[i].Correct = nil
			}
		}
		if qs == nil {
			qs = []survey.Question{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(qs)
	}
}

// POST /questions
func CreateQuestionHandler(store survey.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q survey.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if msg := validateQuestion(q); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		saved, err := store.SaveQuestion(r.Context(), q)
		if err != nil {
			logrus.WithError(err).Error("save question: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypeQuestionCreated, strconv.FormatInt(saved.ID, 10), saved)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(saved)
	}
}

// PUT /questions/{questionID} — full-field replace.
func UpdateQuestionHandler(store survey.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
		if err != nil {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		var q survey.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if msg := validateQuestion(q); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if err := store.UpdateQuestion(r.Context(), id, q); err != nil {
			if errors.Is(err, survey.ErrNotFound) {
				http.Error(w, "question not found", http.StatusNotFound)
				return
			}
			logrus.WithError(err).Error("update question: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypeQuestionUpdated, strconv.FormatInt(id, 10), q)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /questions/{questionID}
// Historical submissions keep their own response snapshot; deleting a question
// does not cascade into them.
func DeleteQuestionHandler(store survey.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
		if err != nil {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		if err := store.DeleteQuestion(r.Context(), id); err != nil {
			if errors.Is(err, survey.ErrNotFound) {
				http.Error(w, "question not found", http.StatusNotFound)
				return
			}
			logrus.WithError(err).Error("delete question: store failure")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypeQuestionDeleted, strconv.FormatInt(id, 10), nil)
		w.WriteHeader(http.StatusNoContent)
	}
}

func validateQuestion(q survey.Question) string {
	if q.Text == "" {
		return "question text required"
	}
	if q.Kind != survey.KindSingleChoice && q.Kind != survey.KindMultiChoice {
		return "type must be single-choice or multi-choice"
	}
	if len(q.Answers) == 0 {
		return "at least one answer option required"
	}
	if len(q.Correct) == 0 {
		return "at least one correct answer required"
	}
	for _, i := range q.Correct {
		if i < 1 || i > len(q.Answers) {
			return fmt.Sprintf("correct index %d out of range 1..%d", i, len(q.Answers))
		}
	}
	if q.Score < 1 {
		return "score must be a positive integer"
	}
	return ""
}
