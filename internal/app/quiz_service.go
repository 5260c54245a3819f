package app

import (
	"context"
	"math"
	"sort"
	"time"

	"contractor-card-service/internal/domain"
)

// PassThreshold is the minimum percentage of correct answers that earns a card.
const PassThreshold = 80

// PublicQuiz is the catalog as shown to applicants, with answers stripped.
type PublicQuiz struct {
	Companies   []domain.Company        `json:"companies"`
	Questions   []domain.PublicQuestion `json:"questions"`
	IssuedDate  string                  `json:"issued_date"`
	ExpiredDate string                  `json:"expired_date"`
}

// QuizService contains the public quiz use cases.
type QuizService struct {
	catalog CatalogRepository
	now     func() time.Time
}

func NewQuizService(catalog CatalogRepository) *QuizService {
	return &QuizService{catalog: catalog, now: time.Now}
}

// NewQuizServiceWithClock is test-only for deterministic issue dates.
func NewQuizServiceWithClock(catalog CatalogRepository, now func() time.Time) *QuizService {
	return &QuizService{catalog: catalog, now: now}
}

// PublicQuiz returns companies by name and questions in creation order.
func (s *QuizService) PublicQuiz(ctx context.Context) (PublicQuiz, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return PublicQuiz{}, err
	}

	companies := append([]domain.Company(nil), catalog.Companies...)
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].FullName < companies[j].FullName
	})

	questions := orderedQuestions(catalog.Questions)
	public := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, domain.PublicQuestion{ID: q.ID, Question: q.Question, Options: q.Options})
	}

	issued, expired := domain.IssueWindow(s.now())
	return PublicQuiz{
		Companies:   companies,
		Questions:   public,
		IssuedDate:  issued,
		ExpiredDate: expired,
	}, nil
}

// Grade scores answers against the questions currently in the catalog.
// answers[i] is the chosen option for the i-th question; nil means unanswered.
func (s *QuizService) Grade(ctx context.Context, answers []*int) (domain.GradeResult, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.GradeResult{}, err
	}
	return Grade(orderedQuestions(catalog.Questions), answers), nil
}

// Grade counts answers matching each question's correct index.
func Grade(questions []domain.Question, answers []*int) domain.GradeResult {
	correct := 0
	for i, answer := range answers {
		if answer == nil || i >= len(questions) {
			continue
		}
		if *answer == questions[i].CorrectIndex {
			correct++
		}
	}
	total := len(questions)
	percent := Percent(correct, total)
	return domain.GradeResult{
		Correct: correct,
		Total:   total,
		Percent: percent,
		Passed:  total > 0 && percent >= PassThreshold,
	}
}

// Percent is correct/total as a rounded whole percentage, 0 when total is 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func orderedQuestions(questions []domain.Question) []domain.Question {
	out := append([]domain.Question(nil), questions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
