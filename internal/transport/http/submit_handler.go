package http

import (
	"errors"
	"log"
	"net/http"

	"contractor-card-service/internal/app"
)

type SubmitHandler struct {
	intake        *app.IntakeService
	maxPhotoBytes int64
}

func NewSubmitHandler(intake *app.IntakeService, maxPhotoBytes int64) *SubmitHandler {
	return &SubmitHandler{intake: intake, maxPhotoBytes: maxPhotoBytes}
}

type submitResponse struct {
	OK        bool    `json:"ok"`
	CardNo    string  `json:"card_no"`
	PhotoPath *string `json:"photo_path,omitempty"`
	ImageURL  *string `json:"image_url,omitempty"`
}

// ServeHTTP handles POST /api/submit.
func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// room for the form fields around the photo
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+1<<20)
	req, photo, err := decodeSubmission(r, h.maxPhotoBytes)
	if err != nil {
		log.Printf("reject submission: %v", err)
		writeError(w, http.StatusBadRequest, string(app.KindInvalidBody))
		return
	}

	receipt, err := h.intake.Submit(r.Context(), req, photo)
	if err != nil {
		var intakeErr *app.IntakeError
		if errors.As(err, &intakeErr) {
			writeError(w, intakeErr.Status, intakeErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		OK:        true,
		CardNo:    receipt.CardNo,
		PhotoPath: receipt.PhotoPath,
		ImageURL:  receipt.ImageURL,
	})
}
