package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contractor-card-service/internal/domain"
)

func seedSubmission(t *testing.T, env testEnv, sub domain.Submission) domain.Submission {
	t.Helper()
	if err := env.submissions.Insert(context.Background(), &sub); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return sub
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/admin/submissions", "/api/admin/companies", "/api/admin/questions"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestAdminListSubmissionsWithFilters(t *testing.T) {
	env := newTestEnv(t)
	seedSubmission(t, env, domain.Submission{CardNo: "ACM001", FullName: "Somchai", Company: "Acme", IssuedDate: "01/01/68", ExpiredDate: "01/01/69"})
	seedSubmission(t, env, domain.Submission{CardNo: "ZEN001", FullName: "Malee", Company: "Zenith", IssuedDate: "02/01/68", ExpiredDate: "02/01/69"})

	rec := env.admin(t, http.MethodGet, "/api/admin/submissions?q=mal", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0]["card_no"] != "ZEN001" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if _, ok := rows[0]["expires_in_days"]; !ok {
		t.Fatalf("expected expires_in_days on each row")
	}

	rec = env.admin(t, http.MethodGet, "/api/admin/submissions?issued_date=2025-01-01", nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &rows)
	if len(rows) != 1 || rows[0]["card_no"] != "ACM001" {
		t.Fatalf("unexpected rows for date filter %v", rows)
	}
}

func TestAdminPatchAndDeleteSubmission(t *testing.T) {
	env := newTestEnv(t)
	url := "https://cdn.test/old.jpg"
	sub := seedSubmission(t, env, domain.Submission{CardNo: "ACM001", ImageURL: &url})

	rec := env.admin(t, http.MethodPatch, "/api/admin/submissions/"+sub.ID, map[string]any{"viewed": true, "image_url": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["viewed"] != true || body["image_url"] != nil {
		t.Fatalf("unexpected updated row %v", body)
	}

	rec = env.admin(t, http.MethodPatch, "/api/admin/submissions/missing", map[string]any{"viewed": true})
	if rec.Code != http.StatusNotFound || decodeBody(t, rec)["error"] != "not_found" {
		t.Fatalf("expected 404 not_found, got %d", rec.Code)
	}

	rec = env.admin(t, http.MethodDelete, "/api/admin/submissions/"+sub.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if list, _ := env.submissions.List(context.Background()); len(list) != 0 {
		t.Fatalf("expected submission removed")
	}
}

func TestAdminExportCSV(t *testing.T) {
	env := newTestEnv(t)
	seedSubmission(t, env, domain.Submission{
		CardNo: "ACM001", FullName: "Somchai, Jr.", Company: "Acme", CitizenID: "1234567890123",
		IssuedDate: "01/01/68", ExpiredDate: "01/01/69", Score: 9,
	})

	rec := env.admin(t, http.MethodGet, "/api/admin/submissions/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "contractor-cards-") || !strings.Contains(disposition, ".csv") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != "Card No." {
		t.Fatalf("unexpected csv %v", records)
	}
	if records[1][1] != "Somchai, Jr." || records[1][6] != "9" {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestAdminCompanies(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(t, http.MethodPost, "/api/admin/companies", map[string]any{"full_name": " Zenith ", "short_name": "zen"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	if created["short_name"] != "ZEN" || created["full_name"] != "Zenith" {
		t.Fatalf("unexpected company %v", created)
	}

	rec = env.admin(t, http.MethodPost, "/api/admin/companies", map[string]any{"full_name": "Bad", "short_name": "TOO-LONG"})
	if rec.Code != http.StatusBadRequest || decodeBody(t, rec)["error"] != "invalid_body" {
		t.Fatalf("expected invalid_body, got %d", rec.Code)
	}

	quiz := env.do(httptest.NewRequest(http.MethodGet, "/api/quiz", nil))
	var public struct {
		Companies []map[string]any `json:"companies"`
	}
	_ = json.Unmarshal(quiz.Body.Bytes(), &public)
	if len(public.Companies) != 2 {
		t.Fatalf("expected catalog to pick up new company, got %v", public.Companies)
	}

	id, _ := created["id"].(string)
	if rec := env.admin(t, http.MethodDelete, "/api/admin/companies/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := env.admin(t, http.MethodDelete, "/api/admin/companies/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestAdminQuestions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(t, http.MethodPost, "/api/admin/questions", map[string]any{
		"question": "Fire exit?", "options": []string{"left", "right", ""}, "correct_index": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.admin(t, http.MethodPost, "/api/admin/questions", map[string]any{
		"question": "Broken?", "options": []string{"only"}, "correct_index": 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = env.admin(t, http.MethodPost, "/api/admin/questions", map[string]any{
		"question": "No index?", "options": []string{"a", "b"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without correct_index, got %d", rec.Code)
	}

	rec = env.admin(t, http.MethodGet, "/api/admin/questions", nil)
	var listed []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed) != 2 || listed[0]["question"] != "Fire exit?" {
		t.Fatalf("expected newest first, got %v", listed)
	}
}
