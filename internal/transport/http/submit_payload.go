package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"

	"contractor-card-service/internal/app"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// submitPayload mirrors the form wizard's JSON. Pointers let validation tell
// a missing field from a zero value.
type submitPayload struct {
	FullName     *string  `json:"full_name" validate:"required"`
	Company      *string  `json:"company" validate:"required"`
	CompanyShort *string  `json:"company_short" validate:"required"`
	Department   *string  `json:"department" validate:"required"`
	CitizenID    *string  `json:"citizen_id" validate:"required"`
	IssuedDate   *string  `json:"issued_date" validate:"required"`
	ExpiredDate  *string  `json:"expired_date" validate:"required"`
	Score        *float64 `json:"score" validate:"required"`
	Total        *float64 `json:"total" validate:"required"`
	Percent      *float64 `json:"percent" validate:"required"`
}

// toRequest enforces the quiz-result rules the schema alone cannot express.
func (p submitPayload) toRequest() (app.SubmissionRequest, error) {
	if err := validate.Struct(p); err != nil {
		return app.SubmissionRequest{}, err
	}
	// The prefix is used verbatim; callers own its normalization.
	prefix := *p.CompanyShort
	if prefix == "" {
		return app.SubmissionRequest{}, errors.New("company_short is empty")
	}
	score, total, percent := *p.Score, *p.Total, *p.Percent
	if !whole(score) || !whole(total) || !whole(percent) {
		return app.SubmissionRequest{}, errors.New("score, total and percent must be whole numbers")
	}
	if total <= 0 || score < 0 || score > total {
		return app.SubmissionRequest{}, fmt.Errorf("score %v out of range for total %v", score, total)
	}
	if int(percent) != app.Percent(int(score), int(total)) {
		return app.SubmissionRequest{}, fmt.Errorf("percent %v does not match score %v/%v", percent, score, total)
	}
	if int(percent) < app.PassThreshold {
		return app.SubmissionRequest{}, fmt.Errorf("percent %v below passing threshold", percent)
	}
	return app.SubmissionRequest{
		FullName:     *p.FullName,
		Company:      *p.Company,
		CompanyShort: prefix,
		Department:   *p.Department,
		CitizenID:    *p.CitizenID,
		Score:        int(score),
		Total:        int(total),
		Percent:      int(percent),
		IssuedDate:   *p.IssuedDate,
		ExpiredDate:  *p.ExpiredDate,
	}, nil
}

func whole(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}

// decodeSubmission reads either a multipart form (payload + optional photo)
// or a bare JSON body.
func decodeSubmission(r *http.Request, maxPhotoBytes int64) (app.SubmissionRequest, *app.Photo, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var p submitPayload
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&p); err != nil {
			return app.SubmissionRequest{}, nil, fmt.Errorf("decode body: %w", err)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return app.SubmissionRequest{}, nil, errors.New("decode body: unexpected data after JSON object")
		}
		req, err := p.toRequest()
		return req, nil, err
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		return app.SubmissionRequest{}, nil, fmt.Errorf("parse multipart: %w", err)
	}
	raw := r.FormValue("payload")
	if raw == "" {
		return app.SubmissionRequest{}, nil, errors.New("payload field missing")
	}
	var p submitPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return app.SubmissionRequest{}, nil, fmt.Errorf("decode payload: %w", err)
	}
	req, err := p.toRequest()
	if err != nil {
		return app.SubmissionRequest{}, nil, err
	}

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return app.SubmissionRequest{}, nil, fmt.Errorf("read photo: %w", err)
	}
	defer file.Close()
	if header.Size > maxPhotoBytes {
		return app.SubmissionRequest{}, nil, fmt.Errorf("photo is %d bytes, limit %d", header.Size, maxPhotoBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		return app.SubmissionRequest{}, nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > maxPhotoBytes {
		return app.SubmissionRequest{}, nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	return req, &app.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
