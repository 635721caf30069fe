// Package slot provides the durable key-value slots that hold serialized carts.
package slot

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmpty is returned by Load when nothing is stored under the key.
var ErrEmpty = errors.New("slot empty")

type Repository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// CartKey is the well-known slot key for a session's cart.
func CartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
