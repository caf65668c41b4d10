package parties

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	parties map[int64]Party
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{parties: make(map[int64]Party)}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Party, int, error) {
	var out []Party
	for _, p := range m.parties {
		if filters.Kind != "" && p.Kind != filters.Kind {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Party, error) {
	p, ok := m.parties[id]
	if !ok {
		return Party{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, party Party) (Party, error) {
	for _, p := range m.parties {
		if p.Code == party.Code {
			return Party{}, ErrDuplicateCode
		}
	}
	m.nextID++
	party.ID = m.nextID
	party.CreatedAt = time.Now()
	party.UpdatedAt = party.CreatedAt
	m.parties[party.ID] = party
	return party, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, party Party) error {
	existing, ok := m.parties[id]
	if !ok {
		return ErrNotFound
	}
	existing.Name = party.Name
	existing.GSTIN = party.GSTIN
	m.parties[id] = existing
	return nil
}

func (m *memoryRepo) PartyExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.parties[id]
	return ok, nil
}

func TestCreateParty(t *testing.T) {
	svc := NewService(newMemoryRepo())
	p, err := svc.Create(context.Background(), Party{
		Code:  "VEN-001",
		Name:  "Sharma Castings",
		Kind:  KindVendor,
		GSTIN: "27ABCDE1234F1Z5",
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
}

func TestCreatePartyValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	cases := []Party{
		{Name: "No Code", Kind: KindVendor},
		{Code: "X", Kind: KindVendor},
		{Code: "X", Name: "Bad Kind", Kind: "SUPPLIER"},
		{Code: "X", Name: "Bad GSTIN", Kind: KindCustomer, GSTIN: "not-a-gstin"},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestCreatePartyDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Create(ctx, Party{Code: "VEN-001", Name: "A", Kind: KindVendor})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Party{Code: "VEN-001", Name: "B", Kind: KindVendor})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestPartyExists(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, Party{Code: "CUS-001", Name: "Meridian Tools", Kind: KindCustomer})
	require.NoError(t, err)

	ok, err := svc.PartyExists(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.PartyExists(ctx, 999)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.PartyExists(ctx, 0)
	require.NoError(t, err)
	require.False(t, ok)
}
