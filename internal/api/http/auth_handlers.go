package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/surveydesk/surveydesk/internal/audit"
	authmw "github.com/surveydesk/surveydesk/internal/auth/middleware"
	"github.com/surveydesk/surveydesk/internal/survey"
)

const minPasswordLen = 8

var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        survey.User `json:"user"`
}

// POST /auth/login {"email":"...","password":"..."}
// Wrong password and unknown email produce the same response; the difference
// shows up only in debug logs at the store.
func LoginHandler(store survey.Store, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}
		u, err := store.GetUser(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, survey.ErrInvalidCredentials) {
				http.Error(w, "invalid email or password", http.StatusUnauthorized)
				return
			}
			logrus.WithError(err).Error("login: store failure")
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}
		tok, err := authSvc.IssueJWT(u.Email, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{AccessToken: tok, User: u})
	}
}

// POST /auth/register {"email","password","confirm_password","full_name","class"}
// New accounts are always students and must change their password on first
// login.
func RegisterHandler(store survey.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email           string `json:"email"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirm_password"`
			FullName        string `json:"full_name"`
			Class           string `json:"class"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.FullName == "" || req.Email == "" || req.Class == "" || req.Password == "" {
			http.Error(w, "all registration fields are required", http.StatusBadRequest)
			return
		}
		if req.Password != req.ConfirmPassword {
			http.Error(w, "password confirmation does not match", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		if !emailRe.MatchString(req.Email) {
			http.Error(w, "invalid email address", http.StatusBadRequest)
			return
		}
		if err := store.RegisterUser(r.Context(), req.Email, req.Password, req.FullName, req.Class); err != nil {
			if errors.Is(err, survey.ErrEmailTaken) {
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			logrus.WithError(err).Error("register: store failure")
			http.Error(w, "registration failed", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypeUserRegistered, req.Email, map[string]string{"class": req.Class})
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "registration successful"})
	}
}

// POST /auth/change-password {"new_password","confirm_password"}
// Clears the first-login flag. Identity comes from the bearer token, so the
// forced first-login flow needs no old password.
func ChangePasswordHandler(store survey.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := authmw.SubjectFromContext(r.Context())
		if email == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			NewPassword     string `json:"new_password"`
			ConfirmPassword string `json:"confirm_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.NewPassword == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			http.Error(w, "password confirmation does not match", http.StatusBadRequest)
			return
		}
		if len(req.NewPassword) < minPasswordLen {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		if err := store.UpdatePassword(r.Context(), email, req.NewPassword); err != nil {
			if errors.Is(err, survey.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			logrus.WithError(err).Error("change password: store failure")
			http.Error(w, "password update failed", http.StatusInternalServerError)
			return
		}
		rec.Record(r.Context(), audit.TypePasswordChanged, email, nil)
		w.WriteHeader(http.StatusNoContent)
	}
}
