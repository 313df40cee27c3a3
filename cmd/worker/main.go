package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ecosphere-community/eco-backend/config"
	"github.com/ecosphere-community/eco-backend/internal/platform/logger"
	"github.com/ecosphere-community/eco-backend/internal/rewards/chain"
	"github.com/ecosphere-community/eco-backend/internal/rewards/outbox"
	"github.com/ecosphere-community/eco-backend/internal/storage/postgres"
)

const serviceName = "eco-reward-worker"

// The worker drains the reward outbox: it leases pending rows, submits
// the token transfers on-chain, and records the outcome. It runs as its
// own process so a slow or unreachable chain node never stalls the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(serviceName, cfg.App.LogLevel)

	if cfg.Chain.RPCURL == "" {
		log.Fatal().Msg("CHAIN_RPC_URL is required")
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	worker := outbox.NewWorker(db, chain.NewClient(cfg.Chain), outbox.Config{}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("reward worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("reward worker exited")
	}
	log.Info().Msg("reward worker stopped")
}
