package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecosphere-community/eco-backend/config"
	"github.com/ecosphere-community/eco-backend/internal/auth"
	"github.com/ecosphere-community/eco-backend/internal/bootstrap"
	cleanuphttp "github.com/ecosphere-community/eco-backend/internal/cleanups/http"
	mktrepo "github.com/ecosphere-community/eco-backend/internal/marketplace/repository"
	"github.com/ecosphere-community/eco-backend/internal/platform/cronjob"
	"github.com/ecosphere-community/eco-backend/internal/platform/logger"
	"github.com/ecosphere-community/eco-backend/internal/platform/s3store"
	"github.com/ecosphere-community/eco-backend/internal/rewards"
	"github.com/ecosphere-community/eco-backend/internal/rewards/chain"
	"github.com/ecosphere-community/eco-backend/internal/scraper"
	"github.com/ecosphere-community/eco-backend/internal/storage/postgres"

	firebaseauth "firebase.google.com/go/v4/auth"
)

const serviceName = "eco-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(serviceName, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	cache, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer cache.Close()

	var authClient *firebaseauth.Client
	if cfg.Auth.FirebaseCredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(&cfg.Auth)
		if err != nil {
			log.Fatal().Err(err).Msg("firebase initialization failed")
		}
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, token verification disabled")
	}

	var uploader cleanuphttp.Uploader
	if cfg.Storage.S3Bucket != "" {
		store, err := s3store.New(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Region)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client initialization failed")
		}
		uploader = store
	} else {
		log.Warn().Msg("S3_BUCKET not set, report image upload disabled")
	}

	chainClient := chain.NewClient(cfg.Chain)

	scrapeHandler := scraper.NewHandler(
		scraper.NewClient(cfg.Scraper.PythonBin, cfg.Scraper.ScriptPath, cfg.Scraper.Timeout, log),
		cfg.Scraper.RatePerMin,
		cache,
		log,
	)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RewardAmount:   cfg.Chain.RewardAmount,
		DB:             db,
		Cache:          cache,
		Chain:          chainClient,
		AuthClient:     authClient,
		Scraper:        scrapeHandler,
		Uploader:       uploader,
		Log:            log,
	})

	sched := cronjob.NewScheduler(mktrepo.NewRepo(db), rewards.NewRepo(db), log)
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
