package survey

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAttemptsExhausted  = errors.New("maximum attempts reached")
)

// Store is the record-store contract the rest of the app is written against.
// Durable state lives exclusively behind this interface; callers hold only
// transient copies for the duration of one computation.
type Store interface {
	GetQuestions(ctx context.Context) ([]Question, error)
	SaveQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, id int64, q Question) error
	DeleteQuestion(ctx context.Context, id int64) error

	// GetSubmissions returns submissions newest first; userEmail=="" means all.
	GetSubmissions(ctx context.Context, userEmail string) ([]Submission, error)
	// SaveSubmission re-checks the attempt limit, scores the responses against
	// the current catalog and persists the result. ErrAttemptsExhausted means
	// nothing was written.
	SaveSubmission(ctx context.Context, userEmail string, responses map[string][]string) (Submission, error)
	CountSubmissions(ctx context.Context, userEmail string) (int, error)

	GetUsers(ctx context.Context, role string) ([]User, error)
	GetUser(ctx context.Context, email, password string) (User, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error
	RegisterUser(ctx context.Context, email, password, fullName, className string) error
}
