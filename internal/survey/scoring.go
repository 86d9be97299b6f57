package survey

import "strconv"

// QuestionResult is the per-question outcome of scoring one submission.
type QuestionResult struct {
	Selected []string `json:"selected"`
	Expected []string `json:"expected,omitempty"`
	Correct  bool     `json:"correct"`
}

// Score grades a response map against the question catalog. A question is
// correct iff the set of selected option texts equals the set of expected
// texts; order is ignored and duplicate selections collapse. Questions with
// identical option texts therefore cannot be told apart by this rule.
// Absent or empty responses count as "no answer", never as an error.
func Score(catalog []Question, responses map[string][]string) (int, map[string]QuestionResult) {
	total := 0
	perQuestion := make(map[string]QuestionResult, len(catalog))
	for _, q := range catalog {
		key := strconv.FormatInt(q.ID, 10)
		expected := q.ExpectedAnswers()
		selected := responses[key]
		correct := SameAnswerSet(selected, expected)
		if correct {
			total += q.Score
		}
		perQuestion[key] = QuestionResult{Selected: selected, Expected: expected, Correct: correct}
	}
	return total, perQuestion
}

// ExpectedAnswers projects the 1-based correct indices onto the answer list.
// Out-of-range indices are skipped rather than panicking on bad stored data.
func (q Question) ExpectedAnswers() []string {
	out := make([]string, 0, len(q.Correct))
	for _, i := range q.Correct {
		if i >= 1 && i <= len(q.Answers) {
			out = append(out, q.Answers[i-1])
		}
	}
	return out
}

// MaxPossibleScore is the sum of point values over the catalog.
func MaxPossibleScore(catalog []Question) int {
	sum := 0
	for _, q := range catalog {
		sum += q.Score
	}
	return sum
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

// SameAnswerSet reports whether two answer lists select the same set of
// options. Order is ignored and duplicates collapse.
func SameAnswerSet(selected, expected []string) bool {
	return setEqual(toSet(selected), toSet(expected))
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
