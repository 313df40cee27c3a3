package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ecosphere-community/eco-backend/internal/fundraisers/domain"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

const (
	leaderboardKey = "eco:leaderboard"
	leaderboardTTL = 60 * time.Second
)

// Store is the fundraiser persistence surface. AddDonation must apply
// the donation row and the raised increment atomically.
type Store interface {
	Create(ctx context.Context, f *domain.Fundraiser) (*domain.Fundraiser, error)
	Get(ctx context.Context, id string) (*domain.Fundraiser, error)
	List(ctx context.Context) ([]domain.Fundraiser, error)
	AddDonation(ctx context.Context, fundraiserID string, d domain.Donation, now time.Time) (*domain.Fundraiser, error)
	Delete(ctx context.Context, id string) error
	TopDonors(ctx context.Context) ([]domain.LeaderboardEntry, error)
	TopRaisers(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// Directory resolves user facts the fundraiser flows need.
type Directory interface {
	Wallet(ctx context.Context, userID string) (string, error)
}

// Enqueuer records a durable reward intent; dispatch happens in the
// outbox worker, never inline.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID, wallet string, amount int64, reason string) error
}

type Service struct {
	store        Store
	users        Directory
	rewards      Enqueuer
	cache        *redis.Client
	rewardAmount int64
	log          zerolog.Logger
	now          func() time.Time
}

func New(store Store, users Directory, rewards Enqueuer, cache *redis.Client, rewardAmount int64, log zerolog.Logger) *Service {
	return &Service{
		store:        store,
		users:        users,
		rewards:      rewards,
		cache:        cache,
		rewardAmount: rewardAmount,
		log:          log,
		now:          time.Now,
	}
}

type CreateInput struct {
	Title         string
	Description   string
	Goal          float64
	CreatedBy     string
	CreatedByName string
}

// Create stores the fundraiser and queues the creator's reward when a
// wallet is on file. A failed enqueue is logged and never fails the
// create.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Fundraiser, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" ||
		in.CreatedBy == "" || strings.TrimSpace(in.CreatedByName) == "" {
		return nil, fmt.Errorf("%w: missing required fields", apperr.ErrInvalid)
	}
	if in.Goal <= 0 {
		return nil, fmt.Errorf("%w: goal must be positive", apperr.ErrInvalid)
	}

	f, err := s.store.Create(ctx, &domain.Fundraiser{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Goal:          in.Goal,
		CreatedBy:     in.CreatedBy,
		CreatedByName: strings.TrimSpace(in.CreatedByName),
	})
	if err != nil {
		return nil, err
	}

	s.enqueueReward(ctx, in.CreatedBy, "fundraiser created")

	f.Progress = domain.ProgressPercent(f.Raised, f.Goal)
	return f, nil
}

func (s *Service) enqueueReward(ctx context.Context, userID, reason string) {
	wallet, err := s.users.Wallet(ctx, userID)
	if err != nil || wallet == "" {
		return
	}
	if err := s.rewards.Enqueue(ctx, userID, wallet, s.rewardAmount, reason); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("reason", reason).Msg("reward enqueue failed")
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Fundraiser, error) {
	f, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Progress = domain.ProgressPercent(f.Raised, f.Goal)
	return f, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Fundraiser, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Progress = domain.ProgressPercent(out[i].Raised, out[i].Goal)
	}
	return out, nil
}

type DonateInput struct {
	UserID    string
	DonorType string
	Name      string
	Amount    float64
}

// Donate validates and records a donation. On success the cached
// leaderboard is dropped so the next read reflects the new totals.
func (s *Service) Donate(ctx context.Context, fundraiserID string, in DonateInput) (*domain.Fundraiser, error) {
	if in.UserID == "" || in.DonorType == "" || in.Amount <= 0 {
		return nil, fmt.Errorf("%w: invalid donation details", apperr.ErrInvalid)
	}
	if in.DonorType != domain.DonorIndividual && in.DonorType != domain.DonorCompany {
		return nil, fmt.Errorf("%w: donor type must be 'individual' or 'company'", apperr.ErrInvalid)
	}
	if in.DonorType == domain.DonorCompany && strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: company name is required for company donations", apperr.ErrInvalid)
	}

	f, err := s.store.AddDonation(ctx, fundraiserID, domain.Donation{
		UserID:    in.UserID,
		DonorType: in.DonorType,
		Name:      strings.TrimSpace(in.Name),
		Amount:    in.Amount,
	}, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.invalidateLeaderboard(ctx)

	f.Progress = domain.ProgressPercent(f.Raised, f.Goal)
	return f, nil
}

// Delete removes a fundraiser; only its creator may do so.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if requesterID == "" {
		return fmt.Errorf("%w: userId is required", apperr.ErrInvalid)
	}

	f, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if f.CreatedBy != requesterID {
		return domain.ErrNotCreator
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

// Leaderboard serves the cached rankings when fresh, recomputing both
// groupings otherwise. Cache trouble degrades to a direct read.
func (s *Service) Leaderboard(ctx context.Context) (*domain.Leaderboard, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, leaderboardKey).Result()
		if err == nil {
			var lb domain.Leaderboard
			if jsonErr := json.Unmarshal([]byte(raw), &lb); jsonErr == nil {
				return &lb, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("leaderboard cache read")
		}
	}

	donors, err := s.store.TopDonors(ctx)
	if err != nil {
		return nil, err
	}
	raisers, err := s.store.TopRaisers(ctx)
	if err != nil {
		return nil, err
	}

	lb := &domain.Leaderboard{MostDonated: donors, MostRaised: raisers}

	if s.cache != nil {
		if raw, err := json.Marshal(lb); err == nil {
			if err := s.cache.Set(ctx, leaderboardKey, raw, leaderboardTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("leaderboard cache write")
			}
		}
	}
	return lb, nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("leaderboard cache invalidate")
	}
}
