package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"contractor-card-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeDomainError maps repository and validation errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrInvalidCompany), errors.Is(err, domain.ErrInvalidQuestion):
		writeError(w, http.StatusBadRequest, "invalid_body")
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// recoverJSON turns a panic into the intake's unexpected_error response.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "unexpected_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
