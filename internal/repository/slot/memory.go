package slot

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() Repository {
	return &memoryRepo{slots: make(map[string][]byte)}
}

func (r *memoryRepo) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.slots[key]
	if !ok {
		return nil, ErrEmpty
	}
	return append([]byte(nil), data...), nil
}

func (r *memoryRepo) Save(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	r.slots[key] = append([]byte(nil), data...)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.slots, key)
	r.mu.Unlock()
	return nil
}
