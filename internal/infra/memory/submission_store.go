package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"contractor-card-service/internal/domain"
	"github.com/google/uuid"
)

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
// Like the Postgres schema it rejects duplicate card numbers.
type SubmissionStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	records map[string]*domain.Submission
	cards   map[string]string // card_no -> id
}

func NewSubmissionStore() *SubmissionStore {
	return NewSubmissionStoreWithClock(time.Now)
}

// NewSubmissionStoreWithClock allows deterministic created_at values in tests.
func NewSubmissionStoreWithClock(now func() time.Time) *SubmissionStore {
	return &SubmissionStore{
		clock:   now,
		records: make(map[string]*domain.Submission),
		cards:   make(map[string]string),
	}
}

func (s *SubmissionStore) CardNumbersWithPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for cardNo := range s.cards {
		if strings.HasPrefix(cardNo, prefix) {
			out = append(out, cardNo)
		}
	}
	return out, nil
}

func (s *SubmissionStore) Insert(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.cards[sub.CardNo]; taken {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateCardNo, sub.CardNo)
	}
	sub.ID = uuid.NewString()
	sub.CreatedAt = s.clock()
	stored := *sub
	s.records[sub.ID] = &stored
	s.cards[sub.CardNo] = sub.ID
	return nil
}

func (s *SubmissionStore) SetImageURL(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ImageURL = &url
	return nil
}

func (s *SubmissionStore) Get(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return *rec, nil
}

func (s *SubmissionStore) List(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	out := make([]domain.Submission, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CardNo > out[j].CardNo
	})
	return out, nil
}

func (s *SubmissionStore) Update(_ context.Context, id string, change domain.SubmissionChange) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	if change.Viewed != nil {
		rec.Viewed = *change.Viewed
	}
	if change.ImageURL != nil {
		rec.ImageURL = *change.ImageURL
	}
	return *rec, nil
}

func (s *SubmissionStore) Delete(_ context.Context, id string) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	delete(s.records, id)
	delete(s.cards, rec.CardNo)
	return *rec, nil
}
