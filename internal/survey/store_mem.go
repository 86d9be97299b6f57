package survey

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemStore is a full in-memory Store, selected explicitly via configuration
// (STORE_DRIVER=memory). It is a real implementation, not a degrade-on-error
// stand-in, and is also what the tests run against.
type MemStore struct {
	mu          sync.RWMutex
	nextID      int64
	questions   []Question
	submissions []Submission
	users       map[string]User
	governor    *Governor
}

func NewMemStore(maxAttempts int) *MemStore {
	m := &MemStore{users: map[string]User{}}
	m.governor = NewGovernor(m, maxAttempts)
	return m
}

func (m *MemStore) Governor() *Governor { return m.governor }

// EnsureAdmin mirrors SQLStore.EnsureAdmin for the memory driver.
func (m *MemStore) EnsureAdmin(_ context.Context, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == RoleAdmin {
			return nil
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	m.users[email] = User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		FirstLogin:   true,
		FullName:     "Administrator",
		RegisteredAt: time.Now().Unix(),
	}
	return nil
}

func (m *MemStore) GetQuestions(_ context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, len(m.questions))
	copy(out, m.questions)
	return out, nil
}

func (m *MemStore) SaveQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	m.questions = append(m.questions, q)
	return q, nil
}

func (m *MemStore) UpdateQuestion(_ context.Context, id int64, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.questions {
		if m.questions[i].ID == id {
			q.ID = id
			m.questions[i] = q
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemStore) DeleteQuestion(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.questions {
		if m.questions[i].ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemStore) GetSubmissions(_ context.Context, userEmail string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		if userEmail == "" || s.UserEmail == userEmail {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemStore) CountSubmissions(_ context.Context, userEmail string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.submissions {
		if s.UserEmail == userEmail {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) SaveSubmission(ctx context.Context, userEmail string, responses map[string][]string) (Submission, error) {
	ok, err := m.governor.CanSubmit(ctx, userEmail)
	if err != nil {
		return Submission{}, err
	}
	if !ok {
		return Submission{}, ErrAttemptsExhausted
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if responses == nil {
		responses = map[string][]string{}
	}
	total, _ := Score(m.questions, responses)
	sub := Submission{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Responses: responses,
		Score:     total,
		CreatedAt: time.Now().Unix(),
	}
	m.submissions = append(m.submissions, sub)
	return sub, nil
}

func (m *MemStore) GetUsers(_ context.Context, role string) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemStore) GetUser(_ context.Context, email, password string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (m *MemStore) UpdatePassword(_ context.Context, email, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.FirstLogin = false
	m.users[email] = u
	return nil
}

func (m *MemStore) RegisterUser(_ context.Context, email, password, fullName, className string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	m.users[email] = User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleStudent,
		FirstLogin:   true,
		FullName:     fullName,
		Class:        className,
		RegisteredAt: time.Now().Unix(),
	}
	return nil
}
