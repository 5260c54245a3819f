package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"contractor-card-service/internal/domain"
	"github.com/google/uuid"
)

// CompanyStore is an in-memory implementation of app.CompanyRepository.
type CompanyStore struct {
	mu        sync.RWMutex
	clock     func() time.Time
	companies map[string]domain.Company
}

func NewCompanyStore(seed ...domain.Company) *CompanyStore {
	s := &CompanyStore{clock: time.Now, companies: make(map[string]domain.Company)}
	for _, c := range seed {
		c := c
		_ = s.CreateCompany(context.Background(), &c)
	}
	return s
}

// ListCompanies returns companies ordered by full name.
func (s *CompanyStore) ListCompanies(_ context.Context) ([]domain.Company, error) {
	s.mu.RLock()
	out := make([]domain.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *CompanyStore) CreateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = s.clock()
	s.companies[c.ID] = *c
	return nil
}

func (s *CompanyStore) UpdateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.companies[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	s.companies[c.ID] = *c
	return nil
}

func (s *CompanyStore) DeleteCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

// QuestionStore is an in-memory implementation of app.QuestionRepository.
type QuestionStore struct {
	mu        sync.RWMutex
	clock     func() time.Time
	seq       int64
	questions map[string]domain.Question
}

func NewQuestionStore(seed ...domain.Question) *QuestionStore {
	s := &QuestionStore{clock: time.Now, questions: make(map[string]domain.Question)}
	for _, q := range seed {
		q := q
		_ = s.CreateQuestion(context.Background(), &q)
	}
	return s
}

// ListQuestions returns questions oldest first.
func (s *QuestionStore) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		q.Options = append([]string(nil), q.Options...)
		out = append(out, q)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *QuestionStore) CreateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// seq keeps creation order strict even when the clock does not advance
	s.seq++
	q.ID = uuid.NewString()
	q.CreatedAt = s.clock().Add(time.Duration(s.seq))
	s.questions[q.ID] = *q
	return nil
}

func (s *QuestionStore) UpdateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[q.ID]
	if !ok {
		return domain.ErrNotFound
	}
	q.CreatedAt = existing.CreatedAt
	s.questions[q.ID] = *q
	return nil
}

func (s *QuestionStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.questions, id)
	return nil
}
