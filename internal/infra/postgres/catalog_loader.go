package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"contractor-card-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads companies and questions for the public form.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	companies, err := l.loadCompanies(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	questions, err := l.loadQuestions(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.Catalog{Companies: companies, Questions: questions}, nil
}

func (l *CatalogLoader) loadCompanies(ctx context.Context) ([]domain.Company, error) {
	rows, err := l.pool.Query(ctx, `SELECT id::text, full_name, short_name, created_at FROM company_master ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.FullName, &c.ShortName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (l *CatalogLoader) loadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id::text, question, options, correct_index, created_at FROM questions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Question, &raw, &q.CorrectIndex, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
