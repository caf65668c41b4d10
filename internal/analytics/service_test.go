package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

type countingRepo struct {
	pendingCalls int
	agingCalls   int
}

func (r *countingRepo) PendingByParty(context.Context) ([]PartyPending, error) {
	r.pendingCalls++
	return []PartyPending{{
		PartyID:      10,
		PartyName:    "Sharma Castings",
		Kind:         "VENDOR",
		OpenInvoices: 2,
		Outstanding:  money.Money(150000),
	}}, nil
}

func (r *countingRepo) Aging(context.Context, time.Time) ([]AgingBucket, error) {
	r.agingCalls++
	return []AgingBucket{
		{Bucket: "current", Outstanding: money.Money(100000), Invoices: 1},
		{Bucket: "31-60", Outstanding: money.Money(50000), Invoices: 1},
	}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestPendingByPartyIsCached(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	first, err := svc.PendingByParty(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, money.Money(150000), first[0].Outstanding)

	second, err := svc.PendingByParty(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.pendingCalls)
}

func TestBumpInvalidatesCachedReads(t *testing.T) {
	repo := &countingRepo{}
	cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.PendingByParty(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.pendingCalls)

	require.NoError(t, cache.Bump(ctx))

	_, err = svc.PendingByParty(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.pendingCalls)
}

func TestGetDashboardCombinesViews(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newTestCache(t))

	dash, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dash.Pending, 1)
	require.Len(t, dash.Aging, 2)
	require.False(t, dash.AsOf.IsZero())
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, NewCache(nil, time.Minute))
	ctx := context.Background()

	_, err := svc.PendingByParty(ctx)
	require.NoError(t, err)
	_, err = svc.PendingByParty(ctx)
	require.NoError(t, err)
	// No cache backend, so every read hits the repository.
	require.Equal(t, 2, repo.pendingCalls)
}
