// Package session issues the anonymous bearer tokens that identify a
// storefront browsing session and, through it, the session's cart. Tokens are
// kept in a repository so a session, and the cart slot keyed by it, outlives
// an API restart.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	tokenrepo "printshop-storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New(repo tokenrepo.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{tokens: newTokenManager(repo), ttl: ttl}
}

// Issue starts a new session and returns its bearer token and id.
func (s *Service) Issue(ctx context.Context) (accessToken, sessionID string, err error) {
	sessionID = uuid.NewString()
	accessToken, err = s.tokens.Issue(ctx, sessionID, s.ttl)
	if err != nil {
		return "", "", err
	}
	return accessToken, sessionID, nil
}

func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	return meta.SessionID, nil
}

// End revokes the token and returns the session it belonged to.
func (s *Service) End(ctx context.Context, token string) (string, error) {
	meta, err := s.tokens.Revoke(ctx, token)
	if err != nil {
		return "", err
	}
	return meta.SessionID, nil
}

// Expired removes lapsed tokens and reports the sessions that ended with them.
func (s *Service) Expired(ctx context.Context) ([]string, error) {
	return s.tokens.Sweep(ctx)
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.ttl.Seconds())
}
