package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// SessionTTL is how long an admin session stays valid.
const SessionTTL = 12 * time.Hour

const sessionIssuer = "contractor-card-service"

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service runs the Google sign-in flow and issues admin session tokens.
type Service struct {
	oauth    *oauth2.Config
	verifier TokenVerifier
	secret   []byte
	allowed  map[string]struct{}
	now      func() time.Time
}

func NewService(cfg Config, verifier TokenVerifier) (*Service, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session secret not configured")
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedEmails))
	for _, email := range cfg.AllowedEmails {
		allowed[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &Service{
		oauth:    oauthConfig(cfg),
		verifier: verifier,
		secret:   []byte(cfg.SessionSecret),
		allowed:  allowed,
		now:      time.Now,
	}, nil
}

// LoginURL is where the browser goes to start Google sign-in.
func (s *Service) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a verified, allowed identity.
func (s *Service) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return Identity{}, fmt.Errorf("token response has no id_token")
	}
	identity, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, err
	}
	if err := s.Authorize(identity.Email); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// Authorize checks email against the allow-list.
func (s *Service) Authorize(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrNoEmail
	}
	if len(s.allowed) == 0 {
		return nil
	}
	if _, ok := s.allowed[email]; !ok {
		return ErrForbidden
	}
	return nil
}

// IssueSession signs a session token for identity.
func (s *Service) IssueSession(identity Identity) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(SessionTTL)
	claims := sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseSession validates a session token and re-checks the allow-list.
func (s *Service) ParseSession(raw string) (Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, errors.Join(ErrUnauthorized, err)
	}
	if err := s.Authorize(claims.Email); err != nil {
		return Identity{}, errors.Join(ErrUnauthorized, err)
	}
	return Identity{Email: claims.Email, Name: claims.Name}, nil
}
