package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"contractor-card-service/internal/domain"
)

// ErrorKind classifies intake failures for the HTTP layer.
type ErrorKind string

const (
	KindInvalidBody  ErrorKind = "invalid_body"
	KindUploadFailed ErrorKind = "upload_failed"
	KindInsertFailed ErrorKind = "insert_failed"
	KindUnexpected   ErrorKind = "unexpected_error"
)

// IntakeError is the failure half of a submission attempt. Message is what
// the caller sees in the "error" field; Err keeps the underlying cause.
type IntakeError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *IntakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *IntakeError) Unwrap() error { return e.Err }

// InvalidBody builds the error returned for payloads that fail validation.
func InvalidBody(cause error) *IntakeError {
	return &IntakeError{Kind: KindInvalidBody, Status: http.StatusBadRequest, Message: string(KindInvalidBody), Err: cause}
}

// SubmissionRequest is a validated intake payload.
type SubmissionRequest struct {
	FullName     string
	Company      string
	CompanyShort string
	Department   string
	CitizenID    string
	Score        int
	Total        int
	Percent      int
	IssuedDate   string
	ExpiredDate  string
}

// Receipt is what a successful submission returns to the applicant.
type Receipt struct {
	SubmissionID string
	CardNo       string
	PhotoPath    *string
	ImageURL     *string
}

// IntakeOptions tunes the intake pipeline.
type IntakeOptions struct {
	// MaxAttempts bounds allocation retries after a card number collision.
	MaxAttempts int
	// PhotoMaxDimension downscales photos larger than this many pixels; 0 disables it.
	PhotoMaxDimension int
}

// IntakeService turns a passing quiz attempt into a persisted submission with a card number.
type IntakeService struct {
	submissions SubmissionRepository
	photos      PhotoStore
	events      EventPublisher
	allocator   *CardAllocator
	opts        IntakeOptions
	now         func() time.Time
}

func NewIntakeService(submissions SubmissionRepository, photos PhotoStore, events EventPublisher, opts IntakeOptions) *IntakeService {
	return NewIntakeServiceWithClock(submissions, photos, events, opts, time.Now)
}

// NewIntakeServiceWithClock is used by tests that need deterministic photo paths.
func NewIntakeServiceWithClock(submissions SubmissionRepository, photos PhotoStore, events EventPublisher, opts IntakeOptions, now func() time.Time) *IntakeService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &IntakeService{
		submissions: submissions,
		photos:      photos,
		events:      events,
		allocator:   NewCardAllocator(submissions),
		opts:        opts,
		now:         now,
	}
}

// Submit allocates a card number, stores the optional photo and persists the submission.
//
// The photo is uploaded before the insert so a failed upload leaves nothing
// behind; a failed insert removes the uploaded object again. Attaching the
// photo URL afterwards is a separate update whose failure is only logged.
func (s *IntakeService) Submit(ctx context.Context, req SubmissionRequest, photo *Photo) (Receipt, error) {
	prefix := req.CompanyShort
	if !photo.Empty() {
		photo = downscalePhoto(photo, s.opts.PhotoMaxDimension)
	}

	for attempt := 1; ; attempt++ {
		cardNo, err := s.allocator.Next(ctx, prefix)
		if err != nil {
			log.Printf("allocate card number failed: %v", err)
			return Receipt{}, &IntakeError{Kind: KindUnexpected, Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
		}

		record := domain.Submission{
			CardNo:      cardNo,
			FullName:    req.FullName,
			Company:     req.Company,
			Department:  req.Department,
			CitizenID:   req.CitizenID,
			Score:       req.Score,
			IssuedDate:  req.IssuedDate,
			ExpiredDate: req.ExpiredDate,
			Viewed:      false,
		}

		var photoPath, imageURL string
		if !photo.Empty() {
			photoPath = PhotoPath(prefix, cardNo, photo.Extension(), s.now())
			if err := s.photos.Upload(ctx, photoPath, photo.Data, photo.MimeType()); err != nil {
				log.Printf("upload photo %s failed: %v", photoPath, err)
				return Receipt{}, &IntakeError{Kind: KindUploadFailed, Status: http.StatusInternalServerError, Message: string(KindUploadFailed), Err: err}
			}
			imageURL = s.photos.PublicURL(photoPath)
		}

		if err := s.submissions.Insert(ctx, &record); err != nil {
			if photoPath != "" {
				s.removeOrphan(ctx, photoPath)
			}
			if errors.Is(err, domain.ErrDuplicateCardNo) && attempt < s.opts.MaxAttempts {
				log.Printf("card number %s taken, retrying (attempt %d/%d)", cardNo, attempt, s.opts.MaxAttempts)
				continue
			}
			log.Printf("insert submission failed: %v", err)
			return Receipt{}, &IntakeError{Kind: KindInsertFailed, Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}

		if imageURL != "" {
			if err := s.submissions.SetImageURL(ctx, record.ID, imageURL); err != nil {
				log.Printf("attach photo url to submission %s failed: %v", record.ID, err)
			} else {
				record.ImageURL = &imageURL
			}
		}

		if s.events != nil {
			if err := s.events.Publish(ctx, domain.SubmissionEvent{Type: domain.EventInsert, Record: record}); err != nil {
				log.Printf("publish submission %s failed: %v", record.ID, err)
			}
		}

		receipt := Receipt{SubmissionID: record.ID, CardNo: cardNo}
		if photoPath != "" {
			receipt.PhotoPath = &photoPath
			receipt.ImageURL = &imageURL
		}
		return receipt, nil
	}
}

// orphanCleanupTimeout bounds photo removal once the request context is gone.
const orphanCleanupTimeout = 10 * time.Second

// removeOrphan deletes a photo whose submission was never stored. It outlives
// ctx: inserts often fail because the client went away.
func (s *IntakeService) removeOrphan(ctx context.Context, path string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orphanCleanupTimeout)
	defer cancel()
	if err := s.photos.Remove(ctx, path); err != nil {
		log.Printf("remove orphaned photo %s failed: %v", path, err)
	}
}
