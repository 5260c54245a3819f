package domain

import "time"

// Submission is one applicant's completed, passing quiz attempt.
type Submission struct {
	ID          string    `json:"id"`
	CardNo      string    `json:"card_no"`
	FullName    string    `json:"full_name"`
	Company     string    `json:"company"`
	Department  string    `json:"department"`
	CitizenID   string    `json:"citizen_id"`
	Score       int       `json:"score"`
	IssuedDate  string    `json:"issued_date"`  // DD/MM/YY, Buddhist era
	ExpiredDate string    `json:"expired_date"` // DD/MM/YY, Buddhist era
	ImageURL    *string   `json:"image_url"`
	Viewed      bool      `json:"viewed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Company is an employer organization; ShortName is the card number prefix.
type Company struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	ShortName string    `json:"short_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Question models a multiple choice item with exactly one correct option.
type Question struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicQuestion is a Question without its answer key.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Catalog is everything the public form needs to render.
type Catalog struct {
	Companies []Company  `json:"companies"`
	Questions []Question `json:"questions"`
}

// SubmissionChange is an admin mutation of a submission. Nil fields are left untouched.
type SubmissionChange struct {
	Viewed   *bool
	ImageURL **string
}

// SubmissionFilter narrows the admin submission listing.
type SubmissionFilter struct {
	Keyword    string // matched against card_no, full_name, company, citizen_id
	IssuedDate string // YYYY-MM-DD
	Company    string
}

// EventType mirrors the row-change notifications the admin console merges.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// SubmissionEvent is pushed to admin subscribers whenever a submission changes.
type SubmissionEvent struct {
	Type   EventType  `json:"type"`
	Record Submission `json:"record"`
}

// GradeResult summarizes a scored quiz attempt.
type GradeResult struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}
