package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosphere-community/eco-backend/internal/cleanups/domain"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
	"github.com/ecosphere-community/eco-backend/internal/users"
)

// Store is the cleanup-event persistence surface.
type Store interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	AddParticipant(ctx context.Context, eventID, userID, name string, now time.Time) error
	AddReport(ctx context.Context, eventID string, rep domain.Report) error
	Delete(ctx context.Context, id string) error
}

// Directory resolves user facts for participation and rewards.
type Directory interface {
	Name(ctx context.Context, userID string) (string, error)
	Wallet(ctx context.Context, userID string) (string, error)
}

// Enqueuer records a durable reward intent for the outbox worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID, wallet string, amount int64, reason string) error
}

type Service struct {
	store        Store
	users        Directory
	rewards      Enqueuer
	rewardAmount int64
	log          zerolog.Logger
	now          func() time.Time
}

func New(store Store, users Directory, rewards Enqueuer, rewardAmount int64, log zerolog.Logger) *Service {
	return &Service{
		store:        store,
		users:        users,
		rewards:      rewards,
		rewardAmount: rewardAmount,
		log:          log,
		now:          time.Now,
	}
}

type CreateInput struct {
	Title     string
	Location  string
	Date      string
	CreatedBy string
}

// Create stores the event under the creator's current display name and
// queues the fixed organizer reward when a wallet is on file.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Event, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.Date) == "" || in.CreatedBy == "" {
		return nil, fmt.Errorf("%w: missing required fields", apperr.ErrInvalid)
	}

	name, err := s.users.Name(ctx, in.CreatedBy)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			return nil, err
		}
		name = "Unknown User"
	}

	e, err := s.store.Create(ctx, &domain.Event{
		Title:         strings.TrimSpace(in.Title),
		Location:      strings.TrimSpace(in.Location),
		Date:          strings.TrimSpace(in.Date),
		CreatedBy:     in.CreatedBy,
		CreatedByName: name,
	})
	if err != nil {
		return nil, err
	}

	if wallet, werr := s.users.Wallet(ctx, in.CreatedBy); werr == nil && wallet != "" {
		if qerr := s.rewards.Enqueue(ctx, in.CreatedBy, wallet, s.rewardAmount, "cleanup created"); qerr != nil {
			s.log.Error().Err(qerr).Str("user_id", in.CreatedBy).Msg("reward enqueue failed")
		}
	}

	return e, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Event, error) {
	return s.store.List(ctx)
}

// Join adds the user as a participant. Joining twice is rejected with
// domain.ErrAlreadyJoined and leaves the participant list unchanged.
func (s *Service) Join(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperr.ErrInvalid)
	}

	if _, err := s.store.Get(ctx, eventID); err != nil {
		return nil, err
	}

	name, err := s.users.Name(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.AddParticipant(ctx, eventID, userID, name, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, eventID)
}

type ReportInput struct {
	UserID           string
	ReportText       string
	TrashCollectedKg float64
	ImageURL         string
}

// SubmitReport appends a progress report from a user.
func (s *Service) SubmitReport(ctx context.Context, eventID string, in ReportInput) (*domain.Event, error) {
	if in.UserID == "" || strings.TrimSpace(in.ReportText) == "" || in.TrashCollectedKg <= 0 {
		return nil, fmt.Errorf("%w: missing required fields", apperr.ErrInvalid)
	}

	if _, err := s.store.Get(ctx, eventID); err != nil {
		return nil, err
	}
	name, err := s.users.Name(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	rep := domain.Report{
		UserID:           in.UserID,
		UserName:         name,
		ReportText:       in.ReportText,
		TrashCollectedKg: in.TrashCollectedKg,
		ImageURL:         in.ImageURL,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.AddReport(ctx, eventID, rep); err != nil {
		return nil, err
	}

	s.log.Info().Str("event_id", eventID).Str("user_id", in.UserID).
		Float64("trash_kg", in.TrashCollectedKg).Msg("cleanup report submitted")
	return s.store.Get(ctx, eventID)
}

// Delete removes an event; only its creator may do so.
func (s *Service) Delete(ctx context.Context, eventID, requesterID string) error {
	if requesterID == "" {
		return fmt.Errorf("%w: user ID is required", apperr.ErrInvalid)
	}

	e, err := s.store.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if e.CreatedBy != requesterID {
		return domain.ErrNotCreator
	}
	return s.store.Delete(ctx, eventID)
}
