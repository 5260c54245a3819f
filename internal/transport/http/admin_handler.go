package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"contractor-card-service/internal/app"
	"contractor-card-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	service *app.AdminService
	now     func() time.Time
}

func NewAdminHandler(service *app.AdminService) *AdminHandler {
	return &AdminHandler{service: service, now: time.Now}
}

func filterFrom(r *http.Request) domain.SubmissionFilter {
	q := r.URL.Query()
	return domain.SubmissionFilter{
		Keyword:    q.Get("q"),
		IssuedDate: q.Get("issued_date"),
		Company:    q.Get("company"),
	}
}

func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListSubmissions(r.Context(), filterFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// patchSubmission keeps image_url as raw JSON so an explicit null can be
// told apart from an absent field.
type patchSubmission struct {
	Viewed   *bool           `json:"viewed"`
	ImageURL json.RawMessage `json:"image_url"`
}

func (p patchSubmission) change() (domain.SubmissionChange, error) {
	change := domain.SubmissionChange{Viewed: p.Viewed}
	if len(p.ImageURL) > 0 {
		var url *string
		if err := json.Unmarshal(p.ImageURL, &url); err != nil {
			return change, err
		}
		change.ImageURL = &url
	}
	return change, nil
}

func (h *AdminHandler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	var body patchSubmission
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	change, err := body.change()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	updated, err := h.service.UpdateSubmission(r.Context(), chi.URLParam(r, "id"), change)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubmission(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var exportHeader = []string{"Card No.", "Full Name", "Company", "Issued Date", "Expired Date", "Citizen ID", "Score"}

// ExportSubmissions streams the filtered submissions as CSV.
func (h *AdminHandler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListSubmissions(r.Context(), filterFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	filename := fmt.Sprintf("contractor-cards-%s.csv", h.now().In(domain.Bangkok).Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	out := csv.NewWriter(w)
	rows := [][]string{exportHeader}
	for _, v := range views {
		rows = append(rows, []string{
			v.CardNo, v.FullName, v.Company, v.IssuedDate, v.ExpiredDate, v.CitizenID, strconv.Itoa(v.Score),
		})
	}
	if err := out.WriteAll(rows); err != nil {
		log.Printf("export submissions failed: %v", err)
	}
}

type companyRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	ShortName string `json:"short_name" validate:"required"`
}

func (h *AdminHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *AdminHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var body companyRequest
	if !decodeValid(w, r, &body) {
		return
	}
	company, err := h.service.CreateCompany(r.Context(), body.FullName, body.ShortName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (h *AdminHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var body companyRequest
	if !decodeValid(w, r, &body) {
		return
	}
	company, err := h.service.UpdateCompany(r.Context(), chi.URLParam(r, "id"), body.FullName, body.ShortName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *AdminHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type questionRequest struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"required"`
	CorrectIndex *int     `json:"correct_index" validate:"required"`
}

func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var body questionRequest
	if !decodeValid(w, r, &body) {
		return
	}
	question, err := h.service.CreateQuestion(r.Context(), body.Question, body.Options, *body.CorrectIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var body questionRequest
	if !decodeValid(w, r, &body) {
		return
	}
	question, err := h.service.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), body.Question, body.Options, *body.CorrectIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeValid decodes and validates a JSON body, answering invalid_body on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return false
	}
	return true
}
