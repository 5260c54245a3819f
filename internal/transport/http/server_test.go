package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"contractor-card-service/internal/app"
	"contractor-card-service/internal/auth"
	"contractor-card-service/internal/domain"
	"contractor-card-service/internal/infra/memory"
)

const testMaxPhotoBytes = 1 << 10

type testEnv struct {
	handler     http.Handler
	submissions *memory.SubmissionStore
	photos      *memory.PhotoStore
	hub         *memory.EventHub
	auth        *auth.Service
}

type envOption func(*envConfig)

type envConfig struct {
	photos app.PhotoStore
}

func withPhotoStore(p app.PhotoStore) envOption {
	return func(c *envConfig) { c.photos = p }
}

func newTestEnv(t *testing.T, opts ...envOption) testEnv {
	t.Helper()
	submissions := memory.NewSubmissionStore()
	photos := memory.NewPhotoStore("https://cdn.test")
	companies := memory.NewCompanyStore(domain.Company{FullName: "Acme", ShortName: "ACM"})
	questions := memory.NewQuestionStore(
		domain.Question{Question: "Wear a helmet?", Options: []string{"yes", "no"}, CorrectIndex: 0},
	)
	catalog := memory.NewCatalogCache(memory.NewStoreCatalogLoader(companies, questions), time.Minute)
	hub := memory.NewEventHub()

	cfg := envConfig{photos: photos}
	for _, opt := range opts {
		opt(&cfg)
	}

	authService, err := auth.NewService(auth.Config{
		ClientID:      "client-id",
		SessionSecret: "test-secret",
		AllowedEmails: []string{"admin@example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	intake := app.NewIntakeService(submissions, cfg.photos, hub, app.IntakeOptions{MaxAttempts: 3})
	handler := NewRouter(Handlers{
		Submit: NewSubmitHandler(intake, testMaxPhotoBytes),
		Quiz:   NewQuizHandler(app.NewQuizService(catalog)),
		Admin:  NewAdminHandler(app.NewAdminService(submissions, companies, questions, catalog, hub)),
		Stream: NewWSHandler(hub),
		Login:  NewAuthHandler(authService, "/admin", false),
		Auth:   authService,
	})
	return testEnv{handler: handler, submissions: submissions, photos: photos, hub: hub, auth: authService}
}

func (e testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.IssueSession(auth.Identity{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return token
}

func (e testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.adminToken(t))
	return e.do(req)
}

func validPayload() map[string]any {
	return map[string]any{
		"full_name":     "Somchai",
		"company":       "Acme",
		"company_short": "ACM",
		"department":    "Acme",
		"citizen_id":    "1234567890123",
		"score":         9,
		"total":         10,
		"percent":       90,
		"issued_date":   "01/01/68",
		"expired_date":  "01/01/69",
	}
}

func jsonRequest(t *testing.T, payload any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(raw))
}

func multipartRequest(t *testing.T, payload string, filename string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if payload != "" {
		if err := mw.WriteField("payload", payload); err != nil {
			t.Fatalf("payload field: %v", err)
		}
	}
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("photo part: %v", err)
		}
		_, _ = part.Write(photo)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type failingUploads struct {
	*memory.PhotoStore
}

func (failingUploads) Upload(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}
