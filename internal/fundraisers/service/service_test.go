package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosphere-community/eco-backend/internal/fundraisers/domain"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

type fakeStore struct {
	fundraisers map[string]*domain.Fundraiser
	donorReads  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{fundraisers: map[string]*domain.Fundraiser{}}
}

func (f *fakeStore) Create(_ context.Context, fr *domain.Fundraiser) (*domain.Fundraiser, error) {
	cp := *fr
	cp.ID = "fund-" + cp.Title
	f.fundraisers[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*domain.Fundraiser, error) {
	fr, ok := f.fundraisers[id]
	if !ok {
		return nil, domain.ErrFundraiserNotFound
	}
	cp := *fr
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.Fundraiser, error) {
	var out []domain.Fundraiser
	for _, fr := range f.fundraisers {
		out = append(out, *fr)
	}
	return out, nil
}

func (f *fakeStore) AddDonation(_ context.Context, id string, d domain.Donation, now time.Time) (*domain.Fundraiser, error) {
	fr, ok := f.fundraisers[id]
	if !ok {
		return nil, domain.ErrFundraiserNotFound
	}
	d.DonatedAt = now
	fr.Donations = append(fr.Donations, d)
	fr.Raised += d.Amount
	cp := *fr
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.fundraisers[id]; !ok {
		return domain.ErrFundraiserNotFound
	}
	delete(f.fundraisers, id)
	return nil
}

func (f *fakeStore) TopDonors(_ context.Context) ([]domain.LeaderboardEntry, error) {
	f.donorReads++
	return []domain.LeaderboardEntry{
		{Label: "Green Corp", Total: 500},
		{Label: "Alia", Total: 120},
	}, nil
}

func (f *fakeStore) TopRaisers(_ context.Context) ([]domain.LeaderboardEntry, error) {
	return []domain.LeaderboardEntry{{Label: "Sam", Total: 800}}, nil
}

type fakeDirectory struct{ wallets map[string]string }

func (d *fakeDirectory) Wallet(_ context.Context, userID string) (string, error) {
	return d.wallets[userID], nil
}

type fakeEnqueuer struct {
	calls []struct {
		userID string
		amount int64
		reason string
	}
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, userID, _ string, amount int64, reason string) error {
	e.calls = append(e.calls, struct {
		userID string
		amount int64
		reason string
	}{userID, amount, reason})
	return nil
}

func newTestService(t *testing.T, withCache bool) (*Service, *fakeStore, *fakeEnqueuer, *miniredis.Miniredis) {
	store := newFakeStore()
	enq := &fakeEnqueuer{}
	dir := &fakeDirectory{wallets: map[string]string{
		"creator-1": "0x1111111111111111111111111111111111111111",
	}}

	var cache *redis.Client
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}
	return New(store, dir, enq, cache, 5, zerolog.Nop()), store, enq, mr
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects missing fields", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		_, err := svc.Create(ctx, CreateInput{Title: "River Fund"})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("rejects non-positive goal", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		_, err := svc.Create(ctx, CreateInput{
			Title: "River Fund", Description: "d", Goal: -1, CreatedBy: "creator-1", CreatedByName: "Sam",
		})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("creates and enqueues the creator reward", func(t *testing.T) {
		svc, _, enq, _ := newTestService(t, false)
		f, err := svc.Create(ctx, CreateInput{
			Title: "River Fund", Description: "clean the river", Goal: 1000,
			CreatedBy: "creator-1", CreatedByName: "Sam",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, f.Progress)

		require.Len(t, enq.calls, 1)
		assert.Equal(t, "creator-1", enq.calls[0].userID)
		assert.Equal(t, int64(5), enq.calls[0].amount)
	})

	t.Run("no wallet means no reward, create still succeeds", func(t *testing.T) {
		svc, _, enq, _ := newTestService(t, false)
		_, err := svc.Create(ctx, CreateInput{
			Title: "Tree Fund", Description: "d", Goal: 100,
			CreatedBy: "no-wallet", CreatedByName: "Kim",
		})
		require.NoError(t, err)
		assert.Empty(t, enq.calls)
	})
}

func TestDonate(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, svc *Service) *domain.Fundraiser {
		f, err := svc.Create(ctx, CreateInput{
			Title: "River Fund", Description: "d", Goal: 200,
			CreatedBy: "creator-1", CreatedByName: "Sam",
		})
		require.NoError(t, err)
		return f
	}

	t.Run("rejects bad donor type", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		f := create(t, svc)
		_, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: "charity", Amount: 10})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("non-positive amounts are rejected with no side effect", func(t *testing.T) {
		svc, store, _, _ := newTestService(t, false)
		f := create(t, svc)

		_, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorIndividual, Amount: 0})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
		_, err = svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorIndividual, Amount: -5})
		assert.ErrorIs(t, err, apperr.ErrInvalid)

		assert.Equal(t, 0.0, store.fundraisers[f.ID].Raised)
		assert.Empty(t, store.fundraisers[f.ID].Donations)
	})

	t.Run("company donations need a name", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		f := create(t, svc)
		_, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorCompany, Amount: 10})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("raised equals the sum of donations", func(t *testing.T) {
		svc, store, _, _ := newTestService(t, false)
		f := create(t, svc)

		_, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorIndividual, Amount: 40})
		require.NoError(t, err)
		got, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u2", DonorType: domain.DonorCompany, Name: "Green Corp", Amount: 60})
		require.NoError(t, err)

		assert.Equal(t, 100.0, got.Raised)
		assert.Equal(t, 50, got.Progress)

		var sum float64
		for _, d := range store.fundraisers[f.ID].Donations {
			sum += d.Amount
		}
		assert.Equal(t, got.Raised, sum)
	})

	t.Run("progress caps at 100", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		f := create(t, svc)
		got, err := svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorIndividual, Amount: 500})
		require.NoError(t, err)
		assert.Equal(t, 100, got.Progress)
	})

	t.Run("donation drops the cached leaderboard", func(t *testing.T) {
		svc, _, _, mr := newTestService(t, true)
		f := create(t, svc)

		_, err := svc.Leaderboard(ctx)
		require.NoError(t, err)
		assert.True(t, mr.Exists("eco:leaderboard"))

		_, err = svc.Donate(ctx, f.ID, DonateInput{UserID: "u1", DonorType: domain.DonorIndividual, Amount: 5})
		require.NoError(t, err)
		assert.False(t, mr.Exists("eco:leaderboard"))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t, false)

	f, err := svc.Create(ctx, CreateInput{
		Title: "River Fund", Description: "d", Goal: 200,
		CreatedBy: "creator-1", CreatedByName: "Sam",
	})
	require.NoError(t, err)

	t.Run("only the creator may delete", func(t *testing.T) {
		err := svc.Delete(ctx, f.ID, "intruder")
		assert.ErrorIs(t, err, domain.ErrNotCreator)

		require.NoError(t, svc.Delete(ctx, f.ID, "creator-1"))
		_, ok := store.fundraisers[f.ID]
		assert.False(t, ok)
	})
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by total descending", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, false)
		lb, err := svc.Leaderboard(ctx)
		require.NoError(t, err)
		require.Len(t, lb.MostDonated, 2)
		assert.Equal(t, "Green Corp", lb.MostDonated[0].Label)
		assert.Greater(t, lb.MostDonated[0].Total, lb.MostDonated[1].Total)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		svc, store, _, _ := newTestService(t, true)

		lb1, err := svc.Leaderboard(ctx)
		require.NoError(t, err)
		lb2, err := svc.Leaderboard(ctx)
		require.NoError(t, err)

		assert.Equal(t, lb1, lb2)
		assert.Equal(t, 1, store.donorReads)
	})

	t.Run("expired cache recomputes", func(t *testing.T) {
		svc, store, _, mr := newTestService(t, true)

		_, err := svc.Leaderboard(ctx)
		require.NoError(t, err)
		mr.FastForward(61 * time.Second)

		_, err = svc.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, store.donorReads)
	})
}
