package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosphere-community/eco-backend/internal/marketplace/domain"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

// fakeStore keeps items in memory and mimics the repository's
// transactional purchase semantics.
type fakeStore struct {
	items     map[string]*domain.Item
	purchases map[string][]domain.PurchaseRecord
	users     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     map[string]*domain.Item{},
		purchases: map[string][]domain.PurchaseRecord{},
		users:     map[string]bool{},
	}
}

func (f *fakeStore) Create(_ context.Context, it *domain.Item) (*domain.Item, error) {
	cp := *it
	cp.ID = "item-" + cp.Name
	cp.HasImage = len(cp.ImageData) > 0
	f.items[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeStore) ListUnsold(_ context.Context) ([]domain.Item, error) {
	var out []domain.Item
	for _, it := range f.items {
		if !it.Sold {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, itemID string) (*domain.Item, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) GetImage(_ context.Context, itemID string) ([]byte, string, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, "", domain.ErrItemNotFound
	}
	if len(it.ImageData) == 0 {
		return nil, "", domain.ErrNoImage
	}
	return it.ImageData, it.ImageContentType, nil
}

func (f *fakeStore) Purchase(_ context.Context, itemID, buyerID string, now time.Time) (*domain.Item, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if it.Sold {
		return nil, domain.ErrAlreadySold
	}
	if !f.users[buyerID] {
		return nil, domain.ErrBuyerNotFound
	}
	it.Sold = true
	it.BoughtBy = buyerID
	f.purchases[buyerID] = append(f.purchases[buyerID], domain.PurchaseRecord{
		ItemID:      it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		PurchasedAt: now,
	})
	cp := *it
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, itemID string) error {
	it, ok := f.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if it.Sold {
		return domain.ErrAlreadySold
	}
	delete(f.items, itemID)
	return nil
}

func newTestService(store *fakeStore) *Service {
	return New(store, zerolog.Nop())
}

func TestCreateItem(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := svc.CreateItem(ctx, CreateItemInput{Description: "d", Price: 10, SellerID: "u1"})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		_, err := svc.CreateItem(ctx, CreateItemInput{Name: "Bottle", Description: "d", Price: 0, SellerID: "u1"})
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("creates and trims name", func(t *testing.T) {
		it, err := svc.CreateItem(ctx, CreateItemInput{
			Name: "  Bottle ", Description: "reusable", Price: 12.5, SellerID: "u1",
		})
		require.NoError(t, err)
		assert.Equal(t, "Bottle", it.Name)
		assert.False(t, it.Sold)
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *fakeStore, *domain.Item) {
		store := newFakeStore()
		store.users["buyer-1"] = true
		svc := newTestService(store)
		it, err := svc.CreateItem(ctx, CreateItemInput{
			Name: "Compost Bin", Description: "barely used", Price: 30, SellerID: "seller-1",
		})
		require.NoError(t, err)
		return svc, store, it
	}

	t.Run("marks sold and snapshots the purchase", func(t *testing.T) {
		svc, store, it := setup(t)

		got, err := svc.Purchase(ctx, it.ID, "buyer-1")
		require.NoError(t, err)
		assert.True(t, got.Sold)
		assert.Equal(t, "buyer-1", got.BoughtBy)

		recs := store.purchases["buyer-1"]
		require.Len(t, recs, 1)
		assert.Equal(t, it.ID, recs[0].ItemID)
		assert.Equal(t, "Compost Bin", recs[0].Name)
		assert.Equal(t, 30.0, recs[0].Price)
	})

	t.Run("sold item drops out of the listing", func(t *testing.T) {
		svc, _, it := setup(t)

		before, err := svc.ListUnsold(ctx)
		require.NoError(t, err)
		require.Len(t, before, 1)
		assert.Equal(t, it.ID, before[0].ID)

		_, err = svc.Purchase(ctx, it.ID, "buyer-1")
		require.NoError(t, err)

		after, err := svc.ListUnsold(ctx)
		require.NoError(t, err)
		assert.Empty(t, after)
	})

	t.Run("second purchase fails and changes nothing", func(t *testing.T) {
		svc, store, it := setup(t)
		store.users["buyer-2"] = true

		_, err := svc.Purchase(ctx, it.ID, "buyer-1")
		require.NoError(t, err)

		_, err = svc.Purchase(ctx, it.ID, "buyer-2")
		assert.ErrorIs(t, err, domain.ErrAlreadySold)

		assert.Equal(t, "buyer-1", store.items[it.ID].BoughtBy)
		assert.Empty(t, store.purchases["buyer-2"])
	})

	t.Run("unknown buyer leaves the item unsold", func(t *testing.T) {
		svc, store, it := setup(t)

		_, err := svc.Purchase(ctx, it.ID, "ghost")
		assert.ErrorIs(t, err, domain.ErrBuyerNotFound)
		assert.False(t, store.items[it.ID].Sold)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Purchase(ctx, "nope", "buyer-1")
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *fakeStore, *domain.Item) {
		store := newFakeStore()
		store.users["buyer-1"] = true
		svc := newTestService(store)
		it, err := svc.CreateItem(ctx, CreateItemInput{
			Name: "Solar Lamp", Description: "new", Price: 20, SellerID: "seller-1",
		})
		require.NoError(t, err)
		return svc, store, it
	}

	t.Run("seller deletes unsold item", func(t *testing.T) {
		svc, store, it := setup(t)
		require.NoError(t, svc.DeleteItem(ctx, it.ID, "seller-1"))
		_, ok := store.items[it.ID]
		assert.False(t, ok)
	})

	t.Run("non-seller is rejected", func(t *testing.T) {
		svc, store, it := setup(t)
		err := svc.DeleteItem(ctx, it.ID, "someone-else")
		assert.ErrorIs(t, err, domain.ErrNotSeller)
		_, ok := store.items[it.ID]
		assert.True(t, ok)
	})

	t.Run("sold item cannot be deleted", func(t *testing.T) {
		svc, _, it := setup(t)
		_, err := svc.Purchase(ctx, it.ID, "buyer-1")
		require.NoError(t, err)

		err = svc.DeleteItem(ctx, it.ID, "seller-1")
		assert.ErrorIs(t, err, domain.ErrAlreadySold)
	})
}
