package survey

const (
	KindSingleChoice = "single-choice"
	KindMultiChoice  = "multi-choice"

	RoleAdmin   = "Admin"
	RoleStudent = "Student"
)

type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question"`
	Kind    string   `json:"type"`    // single-choice | multi-choice
	Answers []string `json:"answers"` // order is significant: 1-based indices below
	Correct []int    `json:"correct,omitempty"`
	Score   int      `json:"score"`
}

type User struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // Admin | Student
	FirstLogin   bool   `json:"first_login"`
	FullName     string `json:"full_name"`
	Class        string `json:"class,omitempty"`
	RegisteredAt int64  `json:"registered_at,omitempty"`
}

type Submission struct {
	ID        string              `json:"id"`
	UserEmail string              `json:"user_email"`
	Responses map[string][]string `json:"responses"` // questionID (decimal string) -> selected option texts
	Score     int                 `json:"score"`
	CreatedAt int64               `json:"created_at"`
}
