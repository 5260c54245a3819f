package postgres

import (
	"time"

	"contractor-card-service/internal/domain"
	"github.com/uptrace/bun"
)

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID          string    `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	CardNo      string    `bun:"card_no,notnull"`
	FullName    string    `bun:"full_name,notnull"`
	Company     string    `bun:"company,notnull"`
	Department  string    `bun:"department,notnull"`
	CitizenID   string    `bun:"citizen_id,notnull"`
	Score       int       `bun:"score,notnull"`
	IssuedDate  string    `bun:"issued_date,notnull"`
	ExpiredDate string    `bun:"expired_date,notnull"`
	ImageURL    *string   `bun:"image_url"`
	Viewed      bool      `bun:"viewed,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newSubmissionRow(s domain.Submission) *submissionRow {
	return &submissionRow{
		ID:          s.ID,
		CardNo:      s.CardNo,
		FullName:    s.FullName,
		Company:     s.Company,
		Department:  s.Department,
		CitizenID:   s.CitizenID,
		Score:       s.Score,
		IssuedDate:  s.IssuedDate,
		ExpiredDate: s.ExpiredDate,
		ImageURL:    s.ImageURL,
		Viewed:      s.Viewed,
		CreatedAt:   s.CreatedAt,
	}
}

func (r *submissionRow) toDomain() domain.Submission {
	return domain.Submission{
		ID:          r.ID,
		CardNo:      r.CardNo,
		FullName:    r.FullName,
		Company:     r.Company,
		Department:  r.Department,
		CitizenID:   r.CitizenID,
		Score:       r.Score,
		IssuedDate:  r.IssuedDate,
		ExpiredDate: r.ExpiredDate,
		ImageURL:    r.ImageURL,
		Viewed:      r.Viewed,
		CreatedAt:   r.CreatedAt,
	}
}

type companyRow struct {
	bun.BaseModel `bun:"table:company_master,alias:c"`

	ID        string    `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	FullName  string    `bun:"full_name,notnull"`
	ShortName string    `bun:"short_name,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *companyRow) toDomain() domain.Company {
	return domain.Company{ID: r.ID, FullName: r.FullName, ShortName: r.ShortName, CreatedAt: r.CreatedAt}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID           string    `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	Question     string    `bun:"question,notnull"`
	Options      []string  `bun:"options,type:jsonb,notnull"`
	CorrectIndex int       `bun:"correct_index,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:           r.ID,
		Question:     r.Question,
		Options:      r.Options,
		CorrectIndex: r.CorrectIndex,
		CreatedAt:    r.CreatedAt,
	}
}
