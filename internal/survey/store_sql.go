package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// SQLStore implements Store over database/sql. Works with both the modernc
// sqlite driver and pgx; $1 placeholders are understood by both.
type SQLStore struct {
	db       *sql.DB
	governor *Governor
}

func NewSQLStore(db *sql.DB, maxAttempts int) *SQLStore {
	s := &SQLStore{db: db}
	s.governor = NewGovernor(s, maxAttempts)
	return s
}

func (s *SQLStore) Governor() *Governor { return s.governor }

// EnsureAdmin seeds a default admin account when no admin exists yet.
func (s *SQLStore) EnsureAdmin(ctx context.Context, email, password string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role=$1`, RoleAdmin).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, first_login, full_name, class, registered_at)
		 VALUES ($1,$2,$3,$4,$5,'',$6)`,
		email, string(hash), RoleAdmin, true, "Administrator", time.Now().Unix())
	if err == nil {
		logrus.WithField("email", email).Info("seeded default admin user")
	}
	return err
}

func (s *SQLStore) GetQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, kind, answers_json, correct_json, score FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		var aj, cj string
		if err := rows.Scan(&q.ID, &q.Text, &q.Kind, &aj, &cj, &q.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &q.Answers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cj), &q.Correct); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveQuestion(ctx context.Context, q Question) (Question, error) {
	aj, err := json.Marshal(q.Answers)
	if err != nil {
		return Question{}, err
	}
	cj, err := json.Marshal(q.Correct)
	if err != nil {
		return Question{}, err
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO questions (question, kind, answers_json, correct_json, score)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.Text, q.Kind, string(aj), string(cj), q.Score).Scan(&q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, id int64, q Question) error {
	aj, err := json.Marshal(q.Answers)
	if err != nil {
		return err
	}
	cj, err := json.Marshal(q.Correct)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET question=$1, kind=$2, answers_json=$3, correct_json=$4, score=$5 WHERE id=$6`,
		q.Text, q.Kind, string(aj), string(cj), q.Score, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) GetSubmissions(ctx context.Context, userEmail string) ([]Submission, error) {
	var rows *sql.Rows
	var err error
	if userEmail == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_email, responses_json, score, created_at FROM submissions ORDER BY created_at DESC, id`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_email, responses_json, score, created_at FROM submissions WHERE user_email=$1 ORDER BY created_at DESC, id`,
			userEmail)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var sub Submission
		var rj string
		if err := rows.Scan(&sub.ID, &sub.UserEmail, &rj, &sub.Score, &sub.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rj), &sub.Responses); err != nil {
			sub.Responses = map[string][]string{}
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountSubmissions(ctx context.Context, userEmail string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_email=$1`, userEmail).Scan(&n)
	return n, err
}

func (s *SQLStore) SaveSubmission(ctx context.Context, userEmail string, responses map[string][]string) (Submission, error) {
	// Attempt limit is re-checked here, at persist time, not just when the
	// survey form was served. Nothing is written when the re-check fails.
	ok, err := s.governor.CanSubmit(ctx, userEmail)
	if err != nil {
		return Submission{}, err
	}
	if !ok {
		return Submission{}, ErrAttemptsExhausted
	}

	catalog, err := s.GetQuestions(ctx)
	if err != nil {
		return Submission{}, err
	}
	total, _ := Score(catalog, responses)

	if responses == nil {
		responses = map[string][]string{}
	}
	rj, err := json.Marshal(responses)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Responses: responses,
		Score:     total,
		CreatedAt: time.Now().Unix(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, user_email, responses_json, score, created_at) VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.UserEmail, string(rj), sub.Score, sub.CreatedAt)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) GetUsers(ctx context.Context, role string) ([]User, error) {
	var rows *sql.Rows
	var err error
	if role == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT email, role, first_login, full_name, class, registered_at FROM users ORDER BY email`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT email, role, first_login, full_name, class, registered_at FROM users WHERE role=$1 ORDER BY email`, role)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Email, &u.Role, &u.FirstLogin, &u.FullName, &u.Class, &u.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetUser(ctx context.Context, email, password string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT email, password_hash, role, first_login, full_name, class, registered_at FROM users WHERE email=$1`,
		email).Scan(&u.Email, &u.PasswordHash, &u.Role, &u.FirstLogin, &u.FullName, &u.Class, &u.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Callers see the same failure either way; the distinction stays
			// in the log.
			logrus.WithField("email", email).Debug("login: no user with email")
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		logrus.WithField("email", email).Debug("login: wrong password")
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *SQLStore) UpdatePassword(ctx context.Context, email, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, first_login=$2 WHERE email=$3`,
		string(hash), false, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) RegisterUser(ctx context.Context, email, password, fullName, className string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, first_login, full_name, class, registered_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		email, string(hash), RoleStudent, true, fullName, className, time.Now().Unix())
	return err
}
