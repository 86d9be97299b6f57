// Package stats derives report tables from stored questions, submissions and
// users. Everything here is a pure transform: no store access, no mutation.
// The report/export layer renders these tables; it is not part of this module.
package stats

import (
	"sort"
	"strconv"

	"github.com/surveydesk/surveydesk/internal/survey"
)

const unknownLabel = "unknown"

type Overview struct {
	Submissions   int     `json:"submissions"`
	DistinctUsers int     `json:"distinct_users"`
	MeanScore     float64 `json:"mean_score"`
	MaxScore      int     `json:"max_score"`
	MaxPossible   int     `json:"max_possible"`
	Questions     int     `json:"questions"`
}

type QuestionStat struct {
	QuestionID  int64   `json:"question_id"`
	Text        string  `json:"question"`
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	Skip        int     `json:"skip"`
	Total       int     `json:"total"`
	CorrectRate float64 `json:"correct_rate"`
}

// StudentRow is one row per submission, joined to the submitting user.
type StudentRow struct {
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	Class        string   `json:"class"`
	SubmissionID string   `json:"submission_id"`
	SubmittedAt  int64    `json:"submitted_at"`
	Score        int      `json:"score"`
	MaxPossible  int      `json:"max_possible"`
	Percent      *float64 `json:"percent"` // nil when MaxPossible is 0
}

type ClassStat struct {
	Class         string  `json:"class"`
	Students      int     `json:"students"` // distinct emails
	Submissions   int     `json:"submissions"`
	MeanBestScore float64 `json:"mean_best_score"`
}

// ComputeOverview summarizes the submission history.
func ComputeOverview(questions []survey.Question, submissions []survey.Submission) Overview {
	o := Overview{
		Submissions: len(submissions),
		MaxPossible: survey.MaxPossibleScore(questions),
		Questions:   len(questions),
	}
	seen := map[string]struct{}{}
	sum := 0
	for _, s := range submissions {
		seen[s.UserEmail] = struct{}{}
		sum += s.Score
		if s.Score > o.MaxScore {
			o.MaxScore = s.Score
		}
	}
	o.DistinctUsers = len(seen)
	if len(submissions) > 0 {
		o.MeanScore = float64(sum) / float64(len(submissions))
	}
	return o
}

// PerQuestion counts, for every question, how many submissions answered it
// correctly, wrongly, or not at all. An empty selection is a skip; otherwise
// the scoring engine's set-equality rule decides correct vs wrong.
func PerQuestion(questions []survey.Question, submissions []survey.Submission) []QuestionStat {
	out := make([]QuestionStat, 0, len(questions))
	for _, q := range questions {
		key := strconv.FormatInt(q.ID, 10)
		expected := q.ExpectedAnswers()
		st := QuestionStat{QuestionID: q.ID, Text: q.Text}
		for _, s := range submissions {
			selected := s.Responses[key]
			switch {
			case len(selected) == 0:
				st.Skip++
			case survey.SameAnswerSet(selected, expected):
				st.Correct++
			default:
				st.Wrong++
			}
		}
		st.Total = st.Correct + st.Wrong + st.Skip
		if st.Total > 0 {
			st.CorrectRate = float64(st.Correct) / float64(st.Total)
		}
		out = append(out, st)
	}
	return out
}

// PerStudent joins every submission to its user profile by email. Submissions
// whose user record is missing are labeled rather than dropped; orphaned
// submissions are tolerated data.
func PerStudent(questions []survey.Question, submissions []survey.Submission, users []survey.User) []StudentRow {
	byEmail := make(map[string]survey.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	maxPossible := survey.MaxPossibleScore(questions)

	out := make([]StudentRow, 0, len(submissions))
	for _, s := range submissions {
		row := StudentRow{
			Email:        s.UserEmail,
			FullName:     unknownLabel,
			Class:        unknownLabel,
			SubmissionID: s.ID,
			SubmittedAt:  s.CreatedAt,
			Score:        s.Score,
			MaxPossible:  maxPossible,
		}
		if u, ok := byEmail[s.UserEmail]; ok {
			row.FullName = u.FullName
			row.Class = u.Class
		}
		if maxPossible > 0 {
			p := float64(s.Score) / float64(maxPossible) * 100
			row.Percent = &p
		}
		out = append(out, row)
	}
	return out
}

// PerClass groups per-student rows by class. The mean uses each student's
// best score across their submissions, not the latest or the average.
func PerClass(rows []StudentRow) []ClassStat {
	type acc struct {
		best        map[string]int
		submissions int
	}
	byClass := map[string]*acc{}
	for _, r := range rows {
		a, ok := byClass[r.Class]
		if !ok {
			a = &acc{best: map[string]int{}}
			byClass[r.Class] = a
		}
		a.submissions++
		if cur, ok := a.best[r.Email]; !ok || r.Score > cur {
			a.best[r.Email] = r.Score
		}
	}

	out := make([]ClassStat, 0, len(byClass))
	for class, a := range byClass {
		st := ClassStat{Class: class, Students: len(a.best), Submissions: a.submissions}
		if len(a.best) > 0 {
			sum := 0
			for _, b := range a.best {
				sum += b
			}
			st.MeanBestScore = float64(sum) / float64(len(a.best))
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}
