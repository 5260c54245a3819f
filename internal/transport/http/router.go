package http

import (
	"net/http"

	"contractor-card-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts. Auth may be nil, in which
// case the admin API and sign-in routes are not served.
type Handlers struct {
	Submit *SubmitHandler
	Quiz   *QuizHandler
	Admin  *AdminHandler
	Stream *WSHandler
	Login  *AuthHandler
	Auth   *auth.Service
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(recoverJSON)
		r.Method(http.MethodPost, "/submit", h.Submit)
		r.Get("/quiz", h.Quiz.Catalog)
		r.Post("/quiz/grade", h.Quiz.Grade)

		if h.Auth == nil {
			return
		}
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Get("/submissions", h.Admin.ListSubmissions)
			r.Get("/submissions/export", h.Admin.ExportSubmissions)
			r.Get("/submissions/stream", h.Stream.ServeWS)
			r.Patch("/submissions/{id}", h.Admin.UpdateSubmission)
			r.Delete("/submissions/{id}", h.Admin.DeleteSubmission)

			r.Get("/companies", h.Admin.ListCompanies)
			r.Post("/companies", h.Admin.CreateCompany)
			r.Put("/companies/{id}", h.Admin.UpdateCompany)
			r.Delete("/companies/{id}", h.Admin.DeleteCompany)

			r.Get("/questions", h.Admin.ListQuestions)
			r.Post("/questions", h.Admin.CreateQuestion)
			r.Put("/questions/{id}", h.Admin.UpdateQuestion)
			r.Delete("/questions/{id}", h.Admin.DeleteQuestion)
		})
	})

	if h.Auth != nil && h.Login != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.Recoverer)
			r.Get("/google/login", h.Login.Login)
			r.Get("/google/callback", h.Login.Callback)
			r.Post("/logout", h.Login.Logout)
			r.With(h.Auth.Middleware).Get("/me", h.Login.Me)
		})
	}
	return r
}
