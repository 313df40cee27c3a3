package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosphere-community/eco-backend/internal/marketplace/domain"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

// Store is the persistence surface the marketplace flows need. The
// Purchase implementation must apply the sold flip and the buyer's
// purchase snapshot atomically.
type Store interface {
	Create(ctx context.Context, it *domain.Item) (*domain.Item, error)
	ListUnsold(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	GetImage(ctx context.Context, itemID string) ([]byte, string, error)
	Purchase(ctx context.Context, itemID, buyerID string, now time.Time) (*domain.Item, error)
	Delete(ctx context.Context, itemID string) error
}

type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func New(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

type CreateItemInput struct {
	Name             string
	Description      string
	Price            float64
	SellerID         string
	ImageData        []byte
	ImageContentType string
}

func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: name and description are required", apperr.ErrInvalid)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", apperr.ErrInvalid)
	}

	it := &domain.Item{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Price:            in.Price,
		SellerID:         in.SellerID,
		ImageData:        in.ImageData,
		ImageContentType: in.ImageContentType,
	}
	return s.store.Create(ctx, it)
}

func (s *Service) ListUnsold(ctx context.Context) ([]domain.Item, error) {
	return s.store.ListUnsold(ctx)
}

func (s *Service) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.store.Get(ctx, itemID)
}

func (s *Service) GetImage(ctx context.Context, itemID string) ([]byte, string, error) {
	return s.store.GetImage(ctx, itemID)
}

// Purchase transitions an unsold item to sold and credits the buyer's
// purchase history. A sold item stays sold: retries surface
// domain.ErrAlreadySold and leave every record untouched.
func (s *Service) Purchase(ctx context.Context, itemID, buyerID string) (*domain.Item, error) {
	if itemID == "" || buyerID == "" {
		return nil, fmt.Errorf("%w: itemId and buyerId are required", apperr.ErrInvalid)
	}

	it, err := s.store.Purchase(ctx, itemID, buyerID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("item_id", it.ID).
		Str("buyer_id", buyerID).
		Float64("price", it.Price).
		Msg("item purchased")
	return it, nil
}

// DeleteItem removes a listing. Only the seller may delete, and only
// while the item is unsold.
func (s *Service) DeleteItem(ctx context.Context, itemID, requesterID string) error {
	if requesterID == "" {
		return fmt.Errorf("%w: userId is required", apperr.ErrInvalid)
	}

	it, err := s.store.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if it.SellerID != requesterID {
		return domain.ErrNotSeller
	}
	return s.store.Delete(ctx, itemID)
}
