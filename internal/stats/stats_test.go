package stats

import (
	"math"
	"testing"

	"github.com/surveydesk/surveydesk/internal/survey"
)

func q(id int64, score int, correct ...int) survey.Question {
	return survey.Question{
		ID:      id,
		Text:    "q",
		Kind:    survey.KindMultiChoice,
		Answers: []string{"A", "B", "C"},
		Correct: correct,
		Score:   score,
	}
}

func sub(email string, score int, responses map[string][]string) survey.Submission {
	return survey.Submission{ID: "s-" + email, UserEmail: email, Responses: responses, Score: score}
}

func TestComputeOverview(t *testing.T) {
	questions := []survey.Question{q(1, 2, 1), q(2, 3, 2, 3)}
	submissions := []survey.Submission{
		sub("a@x.co", 5, nil),
		sub("a@x.co", 2, nil),
		sub("b@x.co", 3, nil),
	}
	o := ComputeOverview(questions, submissions)
	if o.Submissions != 3 || o.DistinctUsers != 2 {
		t.Fatalf("counts: %+v", o)
	}
	if o.MaxScore != 5 || o.MaxPossible != 5 || o.Questions != 2 {
		t.Fatalf("maxima: %+v", o)
	}
	if math.Abs(o.MeanScore-10.0/3.0) > 1e-9 {
		t.Fatalf("mean = %v, want 10/3", o.MeanScore)
	}
}

func TestComputeOverviewEmpty(t *testing.T) {
	o := ComputeOverview(nil, nil)
	if o.MeanScore != 0 || o.Submissions != 0 || o.DistinctUsers != 0 {
		t.Fatalf("empty overview: %+v", o)
	}
}

func TestPerQuestionTriState(t *testing.T) {
	// 5 submissions: 2 exactly correct, 2 wrong, 1 blank.
	questions := []survey.Question{q(7, 1, 1)} // expected {"A"}
	submissions := []survey.Submission{
		sub("u1", 1, map[string][]string{"7": {"A"}}),
		sub("u2", 1, map[string][]string{"7": {"A"}}),
		sub("u3", 0, map[string][]string{"7": {"B"}}),
		sub("u4", 0, map[string][]string{"7": {"A", "B"}}),
		sub("u5", 0, map[string][]string{}),
	}
	got := PerQuestion(questions, submissions)
	if len(got) != 1 {
		t.Fatalf("got %d stats, want 1", len(got))
	}
	st := got[0]
	if st.Correct != 2 || st.Wrong != 2 || st.Skip != 1 || st.Total != 5 {
		t.Fatalf("counts: %+v", st)
	}
	if math.Abs(st.CorrectRate-0.4) > 1e-9 {
		t.Fatalf("correct rate = %v, want 0.4", st.CorrectRate)
	}
}

func TestPerQuestionNoSubmissions(t *testing.T) {
	got := PerQuestion([]survey.Question{q(1, 1, 1)}, nil)
	if got[0].CorrectRate != 0 || got[0].Total != 0 {
		t.Fatalf("zero denominator not guarded: %+v", got[0])
	}
}

func TestPerStudentJoinAndUnknown(t *testing.T) {
	questions := []survey.Question{q(1, 4, 1)}
	users := []survey.User{{Email: "a@x.co", FullName: "Ada", Class: "9A", Role: survey.RoleStudent}}
	submissions := []survey.Submission{
		sub("a@x.co", 2, nil),
		sub("ghost@x.co", 4, nil),
	}
	rows := PerStudent(questions, submissions, users)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (one per submission)", len(rows))
	}
	if rows[0].FullName != "Ada" || rows[0].Class != "9A" {
		t.Fatalf("join failed: %+v", rows[0])
	}
	if rows[1].FullName != "unknown" || rows[1].Class != "unknown" {
		t.Fatalf("orphan submission not labeled: %+v", rows[1])
	}
	if rows[0].Percent == nil || math.Abs(*rows[0].Percent-50) > 1e-9 {
		t.Fatalf("percent = %v, want 50", rows[0].Percent)
	}
}

func TestPerStudentPercentUndefinedWhenNoQuestions(t *testing.T) {
	rows := PerStudent(nil, []survey.Submission{sub("a@x.co", 0, nil)}, nil)
	if rows[0].Percent != nil {
		t.Fatalf("percent should be nil when max possible is 0, got %v", *rows[0].Percent)
	}
}

func TestPerClassUsesBestScore(t *testing.T) {
	// One student with submissions scoring 2, 5, 3 contributes 5 to the class
	// mean, not the average 10/3.
	rows := []StudentRow{
		{Email: "a@x.co", Class: "9A", Score: 2},
		{Email: "a@x.co", Class: "9A", Score: 5},
		{Email: "a@x.co", Class: "9A", Score: 3},
		{Email: "b@x.co", Class: "9A", Score: 1},
		{Email: "c@x.co", Class: "9B", Score: 4},
	}
	got := PerClass(rows)
	if len(got) != 2 {
		t.Fatalf("got %d classes, want 2", len(got))
	}
	a := got[0]
	if a.Class != "9A" || a.Students != 2 || a.Submissions != 4 {
		t.Fatalf("9A stats: %+v", a)
	}
	if math.Abs(a.MeanBestScore-3) > 1e-9 { // (5+1)/2
		t.Fatalf("9A mean best = %v, want 3", a.MeanBestScore)
	}
	b := got[1]
	if b.Class != "9B" || b.Students != 1 || b.MeanBestScore != 4 {
		t.Fatalf("9B stats: %+v", b)
	}
}

func TestPerClassEmpty(t *testing.T) {
	if got := PerClass(nil); len(got) != 0 {
		t.Fatalf("expected no classes, got %+v", got)
	}
}
