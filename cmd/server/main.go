package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	api "github.com/surveydesk/surveydesk/internal/api/http"
	"github.com/surveydesk/surveydesk/internal/audit"
	authmw "github.com/surveydesk/surveydesk/internal/auth/middleware"
	"github.com/surveydesk/surveydesk/internal/config"
	"github.com/surveydesk/surveydesk/internal/db"
	"github.com/surveydesk/surveydesk/internal/rbac"
	"github.com/surveydesk/surveydesk/internal/survey"
)

// appStore is what main needs beyond the record-store contract: the attempt
// governor and first-run admin seeding.
type appStore interface {
	survey.Store
	Governor() *survey.Governor
	EnsureAdmin(ctx context.Context, email, password string) error
}

func main() {
	cfg := config.FromEnv()

	if cfg.Mode == config.ModeOnline {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store appStore
	var recorder audit.Recorder = audit.Nop{}
	var eventRepo *audit.EventRepo
	switch cfg.StoreDriver {
	case "memory":
		store = survey.NewMemStore(cfg.MaxAttempts)
	default:
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			logrus.WithError(err).Fatal("db open failed")
		}
		store = survey.NewSQLStore(dbh, cfg.MaxAttempts)
		eventRepo = audit.NewEventRepo(dbh)
		recorder = eventRepo
	}

	if err := store.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Fatal("admin seed failed")
	}

	authSvc := authmw.NewAuthService(cfg.AuthSecret)
	gov := store.Governor()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(store, authSvc))
	r.Post("/auth/register", api.RegisterHandler(store, recorder))

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.With(rbac.Require("user:change_password")).
			Post("/auth/change-password", api.ChangePasswordHandler(store, recorder))

		pr.With(rbac.Require("question:view")).
			Get("/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:create")).
			Post("/questions", api.CreateQuestionHandler(store, recorder))
		pr.With(rbac.Require("question:update")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(store, recorder))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store, recorder))

		pr.With(rbac.Require("attempt:view-remaining")).
			Get("/attempts/remaining", api.RemainingAttemptsHandler(gov))
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.CreateSubmissionHandler(store, gov, recorder))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions", api.ListSubmissionsHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.SubmissionDetailHandler(store))

		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(store))

		pr.With(rbac.Require("stats:view")).
			Get("/stats/overview", api.OverviewStatsHandler(store))
		pr.With(rbac.Require("stats:view")).
			Get("/stats/questions", api.QuestionStatsHandler(store))
		pr.With(rbac.Require("stats:view")).
			Get("/stats/students", api.StudentStatsHandler(store))
		pr.With(rbac.Require("stats:view")).
			Get("/stats/classes", api.ClassStatsHandler(store))

		if eventRepo != nil {
			pr.With(rbac.Require("events:view")).
				Get("/events", api.ListEventsHandler(eventRepo))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	logrus.WithFields(logrus.Fields{
		"addr":  cfg.HTTPAddr,
		"mode":  cfg.Mode,
		"store": cfg.StoreDriver,
		"db":    cfg.DBDriver,
	}).Info("listening")
	logrus.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
