package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"contractor-card-service/internal/domain"
)

// SubmissionView is a submission as listed in the admin console.
type SubmissionView struct {
	domain.Submission
	// ExpiresInDays is nil when the stored expiry date is not parseable.
	ExpiresInDays *int `json:"expires_in_days"`
}

// AdminService backs the admin console: reviewing submissions and
// maintaining the company and question master data.
type AdminService struct {
	submissions SubmissionRepository
	companies   CompanyRepository
	questions   QuestionRepository
	catalog     CatalogRepository
	events      EventPublisher
	now         func() time.Time
}

func NewAdminService(submissions SubmissionRepository, companies CompanyRepository, questions QuestionRepository, catalog CatalogRepository, events EventPublisher) *AdminService {
	return &AdminService{
		submissions: submissions,
		companies:   companies,
		questions:   questions,
		catalog:     catalog,
		events:      events,
		now:         time.Now,
	}
}

// ListSubmissions returns submissions newest first, narrowed by filter.
func (s *AdminService) ListSubmissions(ctx context.Context, filter domain.SubmissionFilter) ([]SubmissionView, error) {
	all, err := s.submissions.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]SubmissionView, 0, len(all))
	for _, sub := range all {
		if !MatchSubmission(sub, filter) {
			continue
		}
		view := SubmissionView{Submission: sub}
		if days, err := domain.DaysUntil(sub.ExpiredDate, now); err == nil {
			view.ExpiresInDays = &days
		}
		views = append(views, view)
	}
	return views, nil
}

// MatchSubmission applies the keyword, issued date and company filters.
func MatchSubmission(sub domain.Submission, filter domain.SubmissionFilter) bool {
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		matched := false
		for _, field := range []string{sub.CardNo, sub.FullName, sub.Company, sub.CitizenID} {
			if field != "" && strings.Contains(strings.ToLower(field), keyword) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if date := strings.TrimSpace(filter.IssuedDate); date != "" {
		if domain.BuddhistDateISO(sub.IssuedDate) != date {
			return false
		}
	}
	if company := strings.TrimSpace(filter.Company); company != "" {
		if !strings.EqualFold(sub.Company, company) {
			return false
		}
	}
	return true
}

// UpdateSubmission applies a reviewer change such as toggling viewed.
func (s *AdminService) UpdateSubmission(ctx context.Context, id string, change domain.SubmissionChange) (domain.Submission, error) {
	updated, err := s.submissions.Update(ctx, id, change)
	if err != nil {
		return domain.Submission{}, err
	}
	s.publish(ctx, domain.EventUpdate, updated)
	return updated, nil
}

// DeleteSubmission removes a submission record.
func (s *AdminService) DeleteSubmission(ctx context.Context, id string) error {
	deleted, err := s.submissions.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, domain.EventDelete, deleted)
	return nil
}

func (s *AdminService) publish(ctx context.Context, typ domain.EventType, record domain.Submission) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.SubmissionEvent{Type: typ, Record: record}); err != nil {
		log.Printf("publish %s for submission %s failed: %v", typ, record.ID, err)
	}
}

func (s *AdminService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return s.companies.ListCompanies(ctx)
}

func (s *AdminService) CreateCompany(ctx context.Context, fullName, shortName string) (domain.Company, error) {
	company, err := NormalizeCompany(fullName, shortName)
	if err != nil {
		return domain.Company{}, err
	}
	if err := s.companies.CreateCompany(ctx, &company); err != nil {
		return domain.Company{}, err
	}
	s.catalog.Invalidate(ctx)
	return company, nil
}

func (s *AdminService) UpdateCompany(ctx context.Context, id, fullName, shortName string) (domain.Company, error) {
	company, err := NormalizeCompany(fullName, shortName)
	if err != nil {
		return domain.Company{}, err
	}
	company.ID = id
	if err := s.companies.UpdateCompany(ctx, &company); err != nil {
		return domain.Company{}, err
	}
	s.catalog.Invalidate(ctx)
	return company, nil
}

func (s *AdminService) DeleteCompany(ctx context.Context, id string) error {
	if err := s.companies.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

// NormalizeCompany trims both names and upper-cases the short name.
func NormalizeCompany(fullName, shortName string) (domain.Company, error) {
	fullName = strings.TrimSpace(fullName)
	shortName = strings.ToUpper(strings.TrimSpace(shortName))
	if fullName == "" {
		return domain.Company{}, fmt.Errorf("%w: full name is required", domain.ErrInvalidCompany)
	}
	if !domain.ValidShortName(shortName) {
		return domain.Company{}, fmt.Errorf("%w: short name must be 1-6 letters or digits", domain.ErrInvalidCompany)
	}
	return domain.Company{FullName: fullName, ShortName: shortName}, nil
}

// ListQuestions returns questions newest first, as the editor shows them.
func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(questions)-1; i < j; i, j = i+1, j-1 {
		questions[i], questions[j] = questions[j], questions[i]
	}
	return questions, nil
}

func (s *AdminService) CreateQuestion(ctx context.Context, text string, options []string, correctIndex int) (domain.Question, error) {
	question, err := NormalizeQuestion(text, options, correctIndex)
	if err != nil {
		return domain.Question{}, err
	}
	if err := s.questions.CreateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	s.catalog.Invalidate(ctx)
	return question, nil
}

func (s *AdminService) UpdateQuestion(ctx context.Context, id, text string, options []string, correctIndex int) (domain.Question, error) {
	question, err := NormalizeQuestion(text, options, correctIndex)
	if err != nil {
		return domain.Question{}, err
	}
	question.ID = id
	if err := s.questions.UpdateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	s.catalog.Invalidate(ctx)
	return question, nil
}

func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

// NormalizeQuestion trims the text, drops blank options and checks the answer index.
func NormalizeQuestion(text string, options []string, correctIndex int) (domain.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Question{}, fmt.Errorf("%w: question text is required", domain.ErrInvalidQuestion)
	}
	clean := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			clean = append(clean, opt)
		}
	}
	if len(clean) < 2 || len(clean) > 4 {
		return domain.Question{}, fmt.Errorf("%w: need 2 to 4 options, got %d", domain.ErrInvalidQuestion, len(clean))
	}
	if correctIndex < 0 || correctIndex >= len(clean) {
		return domain.Question{}, fmt.Errorf("%w: correct index %d out of range", domain.ErrInvalidQuestion, correctIndex)
	}
	return domain.Question{Question: text, Options: clean, CorrectIndex: correctIndex}, nil
}
