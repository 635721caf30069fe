package token

import (
	"context"
	"time"
)

// Token binds an opaque bearer token to a storefront session.
type Token struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	// Delete removes the token and returns what it was bound to.
	Delete(ctx context.Context, token string) (*Token, error)
	// DeleteExpired removes tokens that expired before the given time and
	// returns their session ids.
	DeleteExpired(ctx context.Context, before time.Time) ([]string, error)
}
