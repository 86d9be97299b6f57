package survey_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/surveydesk/surveydesk/internal/db"
	"github.com/surveydesk/surveydesk/internal/survey"
)

func openTestStore(t *testing.T) *survey.SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return survey.NewSQLStore(dbh, 3)
}

func TestSQLStoreQuestionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	in := survey.Question{
		Text:    "Which are even?",
		Kind:    survey.KindMultiChoice,
		Answers: []string{"1", "2", "3", "4"},
		Correct: []int{2, 4},
		Score:   3,
	}
	saved, err := store.SaveQuestion(ctx, in)
	if err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("no id assigned")
	}

	qs, err := store.GetQuestions(ctx)
	if err != nil {
		t.Fatalf("GetQuestions: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
	got := qs[0]
	if got.ID != saved.ID || got.Text != in.Text || got.Kind != in.Kind || got.Score != in.Score {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	for i := range in.Answers {
		if got.Answers[i] != in.Answers[i] {
			t.Fatalf("answer order changed: %v", got.Answers)
		}
	}
	for i := range in.Correct {
		if got.Correct[i] != in.Correct[i] {
			t.Fatalf("correct indices changed: %v", got.Correct)
		}
	}
}

func TestSQLStoreSubmissionFlow(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	q, err := store.SaveQuestion(ctx, survey.Question{
		Text: "pick A", Kind: survey.KindSingleChoice,
		Answers: []string{"A", "B"}, Correct: []int{1}, Score: 2,
	})
	if err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	key := fmt.Sprintf("%d", q.ID)

	const email = "s@example.com"
	sub, err := store.SaveSubmission(ctx, email, map[string][]string{key: {"A"}})
	if err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}
	if sub.Score != 2 {
		t.Fatalf("score = %d, want 2", sub.Score)
	}
	if sub.ID == "" || sub.CreatedAt == 0 {
		t.Fatalf("missing id/timestamp: %+v", sub)
	}

	for i := 0; i < 2; i++ {
		if _, err := store.SaveSubmission(ctx, email, nil); err != nil {
			t.Fatalf("submission %d: %v", i+2, err)
		}
	}
	if _, err := store.SaveSubmission(ctx, email, nil); !errors.Is(err, survey.ErrAttemptsExhausted) {
		t.Fatalf("4th submission = %v, want ErrAttemptsExhausted", err)
	}

	n, err := store.CountSubmissions(ctx, email)
	if err != nil {
		t.Fatalf("CountSubmissions: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	list, err := store.GetSubmissions(ctx, email)
	if err != nil {
		t.Fatalf("GetSubmissions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d submissions, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt < list[i].CreatedAt {
			t.Fatalf("submissions not newest-first: %v then %v", list[i-1].CreatedAt, list[i].CreatedAt)
		}
	}
}

func TestSQLStoreUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.EnsureAdmin(ctx, "admin@example.com", "password123"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := store.EnsureAdmin(ctx, "second@example.com", "password123"); err != nil {
		t.Fatalf("EnsureAdmin (again): %v", err)
	}
	admins, err := store.GetUsers(ctx, survey.RoleAdmin)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("admins = %d, want 1", len(admins))
	}

	if err := store.RegisterUser(ctx, "a@b.co", "password123", "Ada", "9A"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if err := store.RegisterUser(ctx, "a@b.co", "password456", "Bob", "9B"); !errors.Is(err, survey.ErrEmailTaken) {
		t.Fatalf("duplicate = %v, want ErrEmailTaken", err)
	}

	u, err := store.GetUser(ctx, "a@b.co", "password123")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !u.FirstLogin || u.Role != survey.RoleStudent {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := store.GetUser(ctx, "a@b.co", "nope12345"); !errors.Is(err, survey.ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}

	if err := store.UpdatePassword(ctx, "a@b.co", "freshpass99"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	u, err = store.GetUser(ctx, "a@b.co", "freshpass99")
	if err != nil {
		t.Fatalf("GetUser after update: %v", err)
	}
	if u.FirstLogin {
		t.Fatal("first_login not cleared")
	}
}

func TestSQLStoreUpdateDeleteQuestion(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	q, _ := store.SaveQuestion(ctx, survey.Question{
		Text: "old", Kind: survey.KindSingleChoice, Answers: []string{"A"}, Correct: []int{1}, Score: 1,
	})
	upd := survey.Question{Text: "new", Kind: survey.KindMultiChoice, Answers: []string{"A", "B"}, Correct: []int{1, 2}, Score: 5}
	if err := store.UpdateQuestion(ctx, q.ID, upd); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	qs, _ := store.GetQuestions(ctx)
	if qs[0].Text != "new" || qs[0].Score != 5 || len(qs[0].Correct) != 2 {
		t.Fatalf("update not applied: %+v", qs[0])
	}

	if err := store.UpdateQuestion(ctx, q.ID+100, upd); !errors.Is(err, survey.ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
	if err := store.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if err := store.DeleteQuestion(ctx, q.ID); !errors.Is(err, survey.ErrNotFound) {
		t.Fatalf("delete missing = %v, want ErrNotFound", err)
	}
}
