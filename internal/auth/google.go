package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("email not allowed")
	ErrNoEmail      = errors.New("google account has no verified email")
)

// Config holds the Google OAuth client and session settings.
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
	// AllowedEmails limits who may sign in; empty allows any verified Google account.
	AllowedEmails []string
}

// Identity is the signed-in admin.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TokenVerifier checks a Google ID token and extracts the identity it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (Identity, error)
}

// GoogleVerifier validates ID tokens against Google's published keys.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return GoogleVerifier{audience: clientID}
}

func (v GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (Identity, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, v.audience)
	if err != nil {
		return Identity{}, fmt.Errorf("validate id token: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return Identity{}, ErrNoEmail
	}
	name, _ := payload.Claims["name"].(string)
	return Identity{Email: email, Name: name}, nil
}

// ParseAllowList splits a comma separated e-mail list, lower-casing each entry.
func ParseAllowList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if email := strings.ToLower(strings.TrimSpace(part)); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func oauthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}
