package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type fakeVerifier struct {
	identity Identity
	err      error
	got      string
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (Identity, error) {
	f.got = raw
	return f.identity, f.err
}

func newTestService(t *testing.T, allowed []string, verifier TokenVerifier) *Service {
	t.Helper()
	svc, err := NewService(Config{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RedirectURL:   "http://localhost:8080/auth/google/callback",
		SessionSecret: "test-secret",
		AllowedEmails: allowed,
	}, verifier)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestParseAllowList(t *testing.T) {
	got := ParseAllowList(" Admin@Example.com, ,ops@example.com ")
	if len(got) != 2 || got[0] != "admin@example.com" || got[1] != "ops@example.com" {
		t.Fatalf("unexpected allow list %v", got)
	}
	if ParseAllowList("") != nil {
		t.Fatalf("expected empty list")
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}, nil); err == nil {
		t.Fatalf("expected error without session secret")
	}
}

func TestAuthorize(t *testing.T) {
	open := newTestService(t, nil, nil)
	if err := open.Authorize("anyone@gmail.com"); err != nil {
		t.Fatalf("empty allow list should admit anyone: %v", err)
	}
	if err := open.Authorize(""); !errors.Is(err, ErrNoEmail) {
		t.Fatalf("expected ErrNoEmail, got %v", err)
	}

	closed := newTestService(t, []string{"admin@example.com"}, nil)
	if err := closed.Authorize("ADMIN@example.com"); err != nil {
		t.Fatalf("expected case-insensitive match: %v", err)
	}
	if err := closed.Authorize("intruder@example.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLoginURL(t *testing.T) {
	svc := newTestService(t, nil, nil)
	raw := svc.LoginURL("xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "xyz" || q.Get("prompt") != "consent" || q.Get("access_type") != "offline" {
		t.Fatalf("unexpected login url %s", raw)
	}
	if q.Get("client_id") != "client-id" {
		t.Fatalf("expected client id in %s", raw)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc := newTestService(t, []string{"admin@example.com"}, nil)
	token, expires, err := svc.IssueSession(Identity{Email: "admin@example.com", Name: "Admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if d := time.Until(expires); d < SessionTTL-time.Minute || d > SessionTTL {
		t.Fatalf("unexpected expiry %v", expires)
	}
	identity, err := svc.ParseSession(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.Email != "admin@example.com" || identity.Name != "Admin" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestParseSessionRejects(t *testing.T) {
	svc := newTestService(t, nil, nil)
	token, _, _ := svc.IssueSession(Identity{Email: "admin@example.com"})

	t.Run("tampered", func(t *testing.T) {
		if _, err := svc.ParseSession(token + "x"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
	t.Run("expired", func(t *testing.T) {
		later := newTestService(t, nil, nil)
		later.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }
		if _, err := later.ParseSession(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
	t.Run("removed from allow list", func(t *testing.T) {
		restricted := newTestService(t, []string{"someone-else@example.com"}, nil)
		if _, err := restricted.ParseSession(token); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
	t.Run("other secret", func(t *testing.T) {
		other, _ := NewService(Config{SessionSecret: "another"}, nil)
		if _, err := other.ParseSession(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestMiddleware(t *testing.T) {
	svc := newTestService(t, nil, nil)
	token, _, _ := svc.IssueSession(Identity{Email: "admin@example.com"})
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			t.Errorf("identity missing from context")
		}
		_, _ = w.Write([]byte(identity.Email))
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }, http.StatusOK},
		{"garbage bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/submissions", nil)
			c.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != c.status {
				t.Fatalf("expected %d, got %d", c.status, rec.Code)
			}
			if c.status == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"unauthorized"`) {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestExchange(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"raw-id-token"}`))
	}))
	defer tokenServer.Close()

	verifier := &fakeVerifier{identity: Identity{Email: "admin@example.com"}}
	svc := newTestService(t, []string{"admin@example.com"}, verifier)
	svc.oauth.Endpoint.TokenURL = tokenServer.URL

	identity, err := svc.Exchange(context.Background(), "code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if identity.Email != "admin@example.com" || verifier.got != "raw-id-token" {
		t.Fatalf("unexpected identity %+v (verified %q)", identity, verifier.got)
	}

	verifier.identity = Identity{Email: "stranger@example.com"}
	if _, err := svc.Exchange(context.Background(), "code"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
