package survey

import "context"

// SubmissionCounter is the slice of the store the governor needs.
type SubmissionCounter interface {
	CountSubmissions(ctx context.Context, userEmail string) (int, error)
}

// Governor enforces the maximum-attempts policy. The check is re-run
// immediately before a submission is persisted, not only when the form is
// displayed. Overlapping in-flight submissions from the same user can still
// both pass the re-check; the limit may be over-run by at most the number of
// concurrent submissions minus one. That weak guarantee is accepted rather
// than serialized at the store.
type Governor struct {
	counter SubmissionCounter
	max     int
}

func NewGovernor(counter SubmissionCounter, maxAttempts int) *Governor {
	return &Governor{counter: counter, max: maxAttempts}
}

func (g *Governor) MaxAttempts() int { return g.max }

func (g *Governor) CanSubmit(ctx context.Context, userEmail string) (bool, error) {
	n, err := g.counter.CountSubmissions(ctx, userEmail)
	if err != nil {
		return false, err
	}
	return n < g.max, nil
}

// RemainingAttempts is MaxAttempts minus the submission count, clamped at 0.
func (g *Governor) RemainingAttempts(ctx context.Context, userEmail string) (int, error) {
	n, err := g.counter.CountSubmissions(ctx, userEmail)
	if err != nil {
		return 0, err
	}
	rem := g.max - n
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}
