package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	mktrepo "github.com/ecosphere-community/eco-backend/internal/marketplace/repository"
	"github.com/ecosphere-community/eco-backend/internal/rewards"
)

// stuckRewardCutoff marks pending rewards older than this for the
// nightly report. The worker normally drains them within seconds.
const stuckRewardCutoff = 6 * time.Hour

type Scheduler struct {
	items   *mktrepo.Repo
	rewards *rewards.Repo
	log     zerolog.Logger
	cron    *cron.Cron
}

func NewScheduler(items *mktrepo.Repo, rewardRepo *rewards.Repo, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		items:   items,
		rewards: rewardRepo,
		log:     log,
	}
}

// Start registers the nightly reconciliation at 12:00AM and begins the loop.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runNightly()
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create cron job")
		return
	}

	s.log.Info().Msg("cron scheduler started (reconciliation nightly at 12:00AM)")
	c.Start()
	s.cron = c
}

// Stop halts the cron loop; running jobs finish first.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.log.Info().Msg("nightly reconciliation started")

	ids, err := s.items.SoldWithoutPurchase(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reconciliation scan failed")
		return
	}
	for _, id := range ids {
		if err := s.items.RepairPurchase(ctx, id); err != nil {
			s.log.Error().Err(err).Str("item_id", id).Msg("purchase repair failed")
			continue
		}
		s.log.Warn().Str("item_id", id).Msg("repaired sold item missing its purchase record")
	}

	stuck, err := s.rewards.PendingOlderThan(ctx, int(stuckRewardCutoff.Seconds()))
	if err != nil {
		s.log.Error().Err(err).Msg("stuck reward scan failed")
		return
	}
	for _, in := range stuck {
		s.log.Warn().
			Int64("outbox_id", in.ID).
			Str("user_id", in.UserID).
			Int("attempts", in.AttemptCount).
			Msg("reward still pending past cutoff")
	}

	s.log.Info().
		Int("repaired_items", len(ids)).
		Int("stuck_rewards", len(stuck)).
		Msg("nightly reconciliation completed")
}
