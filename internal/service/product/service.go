// Package product serves the read-only apparel catalog.
package product

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"printshop-storefront/internal/domain"
	productrepo "printshop-storefront/internal/repository/product"
)

const listTTL = 30 * time.Second

type Service struct {
	repo productrepo.Repository
	now  func() time.Time

	mu       sync.RWMutex
	list     []domain.Product
	listedAt time.Time
	sfg      singleflight.Group
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the catalog. Results are reused for a short time and concurrent
// misses share one query.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	if s.list != nil && s.now().Sub(s.listedAt) < listTTL {
		out := s.list
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	// Joined callers must not fail because the first caller went away.
	listCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do("list", func() (interface{}, error) {
		products, err := s.repo.List(listCtx)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []domain.Product{}
		}
		s.mu.Lock()
		s.list, s.listedAt = products, s.now()
		s.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// Get looks a product up by id. Ids that are not UUIDs cannot exist.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
