package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"contractor-card-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// SubmissionRepository stores submissions in the submissions table.
type SubmissionRepository struct {
	db *bun.DB
}

func NewSubmissionRepository(db *bun.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CardNumbersWithPrefix returns only the highest numeric card number under
// prefix (or none), so allocation cost does not grow with the table.
func (r *SubmissionRepository) CardNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var cardNos []string
	err := r.db.NewSelect().
		Model((*submissionRow)(nil)).
		Column("card_no").
		Where("card_no ~ ?", cardNoPattern(prefix)).
		OrderExpr("substr(card_no, ?)::numeric DESC", utf8.RuneCountInString(prefix)+1).
		Limit(1).
		Scan(ctx, &cardNos)
	if err != nil {
		return nil, fmt.Errorf("select card numbers: %w", err)
	}
	return cardNos, nil
}

// cardNoPattern matches prefix followed by digits only.
func cardNoPattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
}

func (r *SubmissionRepository) Insert(ctx context.Context, s *domain.Submission) error {
	row := newSubmissionRow(*s)
	row.ID = ""
	row.CreatedAt = time.Time{}
	_, err := r.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCardNo, pgMessage(err))
		}
		return errors.New(pgMessage(err))
	}
	s.ID = row.ID
	s.CreatedAt = row.CreatedAt
	return nil
}

func (r *SubmissionRepository) SetImageURL(ctx context.Context, id, url string) error {
	res, err := r.db.NewUpdate().
		Model((*submissionRow)(nil)).
		Set("image_url = ?", url).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SubmissionRepository) List(ctx context.Context) ([]domain.Submission, error) {
	var rows []submissionRow
	if err := r.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Submission, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *SubmissionRepository) Update(ctx context.Context, id string, change domain.SubmissionChange) (domain.Submission, error) {
	row := new(submissionRow)
	q := r.db.NewUpdate().Model(row).Where("id = ?", id).Returning("*")
	if change.Viewed != nil {
		q = q.Set("viewed = ?", *change.Viewed)
	}
	if change.ImageURL != nil {
		q = q.Set("image_url = ?", *change.ImageURL)
	}
	if change.Viewed == nil && change.ImageURL == nil {
		// nothing to change; still report whether the row exists
		err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
		return row.toDomain(), notFound(err)
	}
	if err := q.Scan(ctx); err != nil {
		return domain.Submission{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) (domain.Submission, error) {
	row := new(submissionRow)
	if err := r.db.NewDelete().Model(row).Where("id = ?", id).Returning("*").Scan(ctx); err != nil {
		return domain.Submission{}, notFound(err)
	}
	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

// pgMessage extracts the server's message so callers can surface it verbatim.
func pgMessage(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		if msg := pgErr.Field('M'); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
