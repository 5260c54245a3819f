package http

import (
	"encoding/json"
	"net/http"

	"contractor-card-service/internal/app"
)

type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// Catalog serves GET /api/quiz.
func (h *QuizHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.PublicQuiz(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type gradeRequest struct {
	Answers []*int `json:"answers"`
}

// Grade serves POST /api/quiz/grade.
func (h *QuizHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	result, err := h.service.Grade(r.Context(), req.Answers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
