package app

import (
	"context"

	"contractor-card-service/internal/domain"
)

// CardNumberSource lists the card numbers already issued under a prefix.
// An implementation may return just the numerically highest one.
type CardNumberSource interface {
	CardNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// SubmissionRepository persists submissions (Postgres, in-memory, etc).
type SubmissionRepository interface {
	CardNumberSource
	// Insert stores s, filling ID and CreatedAt. A card number collision is
	// reported as domain.ErrDuplicateCardNo.
	Insert(ctx context.Context, s *domain.Submission) error
	SetImageURL(ctx context.Context, id, url string) error
	// List returns every submission, newest first.
	List(ctx context.Context) ([]domain.Submission, error)
	Update(ctx context.Context, id string, change domain.SubmissionChange) (domain.Submission, error)
	Delete(ctx context.Context, id string) (domain.Submission, error)
}

// CompanyRepository manages the company master list.
type CompanyRepository interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompany(ctx context.Context, c *domain.Company) error
	UpdateCompany(ctx context.Context, c *domain.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

// QuestionRepository manages quiz questions.
type QuestionRepository interface {
	// ListQuestions returns questions oldest first.
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q *domain.Question) error
	UpdateQuestion(ctx context.Context, q *domain.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

// CatalogRepository serves the public quiz catalog (usually cached).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
	Invalidate(ctx context.Context)
}

// PhotoStore is the blob store holding applicant photos.
type PhotoStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

// EventPublisher announces submission changes to admin subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.SubmissionEvent) error
}

// EventBus is an EventPublisher that can also be subscribed to.
// The caller must invoke the returned cancel function to avoid leaks.
type EventBus interface {
	EventPublisher
	Subscribe(ctx context.Context) (<-chan domain.SubmissionEvent, func(), error)
}
