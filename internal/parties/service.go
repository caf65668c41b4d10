package parties

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Party, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Party, error) {
	if id <= 0 {
		return Party{}, fmt.Errorf("%w: invalid party ID", ErrInvalid)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, party Party) (Party, error) {
	if err := s.validate(party); err != nil {
		return Party{}, err
	}
	return s.repo.Create(ctx, party)
}

func (s *Service) Update(ctx context.Context, id int64, party Party) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid party ID", ErrInvalid)
	}
	if err := s.validate(party); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, party)
}

// PartyExists satisfies the invoice module's directory port.
func (s *Service) PartyExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.PartyExists(ctx, id)
}
