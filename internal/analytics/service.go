package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RepositoryPort abstracts the reporting queries.
type RepositoryPort interface {
	PendingByParty(ctx context.Context) ([]PartyPending, error)
	Aging(ctx context.Context, asOf time.Time) ([]AgingBucket, error)
}

// Dashboard is the combined payables/receivables overview.
type Dashboard struct {
	AsOf    time.Time      `json:"as_of"`
	Pending []PartyPending `json:"pending"`
	Aging   []AgingBucket  `json:"aging"`
}

// Service serves cached reporting reads over the payment ledger.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds the analytics service.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// PendingByParty returns each party's open position, cached until the next
// ledger write.
func (s *Service) PendingByParty(ctx context.Context) ([]PartyPending, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.repo.PendingByParty(ctx)
	}
	key, err := s.cache.BuildKey(ctx, "pending_by_party")
	if err != nil {
		return nil, err
	}
	var out []PartyPending
	if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// Aging returns the overdue bucket summary as of the given date.
func (s *Service) Aging(ctx context.Context, asOf time.Time) ([]AgingBucket, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC().Truncate(24 * time.Hour)
	}
	loader := func(ctx context.Context) (interface{}, error) {
		return s.repo.Aging(ctx, asOf)
	}
	key, err := s.cache.BuildKey(ctx, "aging", asOf.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var out []AgingBucket
	if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDashboard assembles the pending and aging views concurrently.
func (s *Service) GetDashboard(ctx context.Context) (Dashboard, error) {
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	dash := Dashboard{AsOf: asOf}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pending, err := s.PendingByParty(ctx)
		if err != nil {
			return fmt.Errorf("pending by party: %w", err)
		}
		dash.Pending = pending
		return nil
	})
	g.Go(func() error {
		aging, err := s.Aging(ctx, asOf)
		if err != nil {
			return fmt.Errorf("aging: %w", err)
		}
		dash.Aging = aging
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}

// Warm primes the dashboard caches. Used by the background warmup job.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.GetDashboard(ctx)
	return err
}
