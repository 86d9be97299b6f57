// Package audit keeps an append-only trail of domain events (submissions
// accepted, questions changed, accounts registered) in the store DB.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	TypeSubmissionAccepted = "SubmissionAccepted"
	TypeQuestionCreated    = "QuestionCreated"
	TypeQuestionUpdated    = "QuestionUpdated"
	TypeQuestionDeleted    = "QuestionDeleted"
	TypeUserRegistered     = "UserRegistered"
	TypePasswordChanged    = "PasswordChanged"
)

type Event struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// Recorder records events. A failed append never fails the operation being
// recorded; implementations log and move on.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any)
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Record(ctx context.Context, typ, key string, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		logrus.WithError(err).WithField("type", typ).Warn("audit: marshal event")
		return
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	if err != nil {
		logrus.WithError(err).WithField("type", typ).Warn("audit: append event")
	}
}

func (r *EventRepo) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Nop is used when the memory store driver is selected.
type Nop struct{}

func (Nop) Record(context.Context, string, string, any) {}
