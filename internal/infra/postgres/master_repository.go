package postgres

import (
	"context"

	"contractor-card-service/internal/domain"
	"github.com/uptrace/bun"
)

// CompanyRepository stores companies in company_master.
type CompanyRepository struct {
	db *bun.DB
}

func NewCompanyRepository(db *bun.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var rows []companyRow
	if err := r.db.NewSelect().Model(&rows).Order("full_name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, c *domain.Company) error {
	row := &companyRow{FullName: c.FullName, ShortName: c.ShortName}
	if _, err := r.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	*c = row.toDomain()
	return nil
}

func (r *CompanyRepository) UpdateCompany(ctx context.Context, c *domain.Company) error {
	row := new(companyRow)
	err := r.db.NewUpdate().
		Model(row).
		Set("full_name = ?", c.FullName).
		Set("short_name = ?", c.ShortName).
		Where("id = ?", c.ID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return notFound(err)
	}
	*c = row.toDomain()
	return nil
}

func (r *CompanyRepository) DeleteCompany(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*companyRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// QuestionRepository stores quiz questions; options are kept as jsonb.
type QuestionRepository struct {
	db *bun.DB
}

func NewQuestionRepository(db *bun.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var rows []questionRow
	if err := r.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *domain.Question) error {
	row := &questionRow{Question: q.Question, Options: q.Options, CorrectIndex: q.CorrectIndex}
	if _, err := r.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	*q = row.toDomain()
	return nil
}

func (r *QuestionRepository) UpdateQuestion(ctx context.Context, q *domain.Question) error {
	row := &questionRow{ID: q.ID, Question: q.Question, Options: q.Options, CorrectIndex: q.CorrectIndex}
	err := r.db.NewUpdate().
		Model(row).
		Column("question", "options", "correct_index").
		WherePK().
		Returning("*").
		Scan(ctx)
	if err != nil {
		return notFound(err)
	}
	*q = row.toDomain()
	return nil
}

func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
