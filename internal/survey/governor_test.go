package survey

import (
	"context"
	"errors"
	"testing"
)

type fixedCounter struct{ n int }

func (c *fixedCounter) CountSubmissions(context.Context, string) (int, error) { return c.n, nil }

func TestGovernorCanSubmitBoundary(t *testing.T) {
	ctx := context.Background()
	c := &fixedCounter{}
	g := NewGovernor(c, 3)

	for n, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, 4: false} {
		c.n = n
		ok, err := g.CanSubmit(ctx, "s@example.com")
		if err != nil {
			t.Fatalf("CanSubmit: %v", err)
		}
		if ok != want {
			t.Errorf("count=%d: CanSubmit = %v, want %v", n, ok, want)
		}
	}
}

func TestGovernorRemainingClampedAndMonotonic(t *testing.T) {
	ctx := context.Background()
	c := &fixedCounter{}
	g := NewGovernor(c, 3)

	prev := g.MaxAttempts() + 1
	for n := 0; n <= 5; n++ {
		c.n = n
		rem, err := g.RemainingAttempts(ctx, "s@example.com")
		if err != nil {
			t.Fatalf("RemainingAttempts: %v", err)
		}
		if rem < 0 {
			t.Errorf("count=%d: remaining %d below zero", n, rem)
		}
		if rem > prev {
			t.Errorf("count=%d: remaining %d increased from %d", n, rem, prev)
		}
		if n >= 3 && rem != 0 {
			t.Errorf("count=%d: remaining = %d, want 0", n, rem)
		}
		prev = rem
	}
}

func TestFourthSubmissionRejectedAndNotRecorded(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(3)
	if _, err := store.SaveQuestion(ctx, Question{
		Text: "q", Kind: KindSingleChoice, Answers: []string{"A"}, Correct: []int{1}, Score: 1,
	}); err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}

	const email = "student@example.com"
	for i := 0; i < 3; i++ {
		if _, err := store.SaveSubmission(ctx, email, map[string][]string{"1": {"A"}}); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}
	_, err := store.SaveSubmission(ctx, email, map[string][]string{"1": {"A"}})
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("4th submission error = %v, want ErrAttemptsExhausted", err)
	}
	n, err := store.CountSubmissions(ctx, email)
	if err != nil {
		t.Fatalf("CountSubmissions: %v", err)
	}
	if n != 3 {
		t.Fatalf("submission count = %d, want 3 (rejected attempt must not be written)", n)
	}
}
