package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"printshop-storefront/internal/domain"
	tokenrepo "printshop-storefront/internal/repository/token"
)

type tokenMeta struct {
	SessionID string
	ExpiresAt time.Time
}

type tokenManager struct {
	repo tokenrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{Token: token, SessionID: sessionID, ExpiresAt: expiresAt})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", fmt.Errorf("store token: %w", err)
	}
	return "", errors.New("token collision")
}

// Validate resolves a live token. Unknown and expired tokens report
// ErrInvalidToken; storage failures are returned as is.
func (m *tokenManager) Validate(ctx context.Context, token string) (tokenMeta, error) {
	t, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return tokenMeta{}, ErrInvalidToken
		}
		return tokenMeta{}, fmt.Errorf("load token: %w", err)
	}
	if m.now().After(t.ExpiresAt) {
		_, _ = m.repo.Delete(ctx, token)
		return tokenMeta{}, ErrInvalidToken
	}
	return tokenMeta{SessionID: t.SessionID, ExpiresAt: t.ExpiresAt}, nil
}

func (m *tokenManager) Revoke(ctx context.Context, token string) (tokenMeta, error) {
	t, err := m.repo.Delete(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return tokenMeta{}, ErrInvalidToken
		}
		return tokenMeta{}, fmt.Errorf("delete token: %w", err)
	}
	return tokenMeta{SessionID: t.SessionID, ExpiresAt: t.ExpiresAt}, nil
}

// Sweep drops expired tokens and returns their session ids.
func (m *tokenManager) Sweep(ctx context.Context) ([]string, error) {
	return m.repo.DeleteExpired(ctx, m.now())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
