package token

import (
	"context"
	"sync"
	"time"

	"printshop-storefront/internal/domain"
)

type memoryRepo struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemory keeps tokens in process memory. Sessions do not survive a restart.
func NewMemory() Repository {
	return &memoryRepo{tokens: make(map[string]Token)}
}

func (r *memoryRepo) Create(_ context.Context, token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.Token]; ok {
		return domain.ErrAlreadyExists
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryRepo) Get(_ context.Context, token string) (*Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memoryRepo) Delete(_ context.Context, token string) (*Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.tokens, token)
	return &t, nil
}

func (r *memoryRepo) DeleteExpired(_ context.Context, before time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, key)
			ids = append(ids, t.SessionID)
		}
	}
	return ids, nil
}
