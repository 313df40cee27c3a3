package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

// SQL statements kept as constants for clarity and reuse.
const (
	// claimReadySQL flips a batch of ready rows to claimed in one
	// atomic statement. Dispatch happens outside any transaction, so
	// a slow chain node never holds row locks or a DB connection.
	claimReadySQL = `
UPDATE reward_outbox
SET status = 'claimed', updated_at = now()
WHERE id IN (
	SELECT id FROM reward_outbox
	WHERE status = 'pending' AND next_attempt_at <= now()
	ORDER BY id ASC
	FOR UPDATE SKIP LOCKED
	LIMIT $1
)
RETURNING id, wallet_address, amount`

	// requeueStaleSQL returns claims abandoned by a crashed worker to
	// the pending pool.
	requeueStaleSQL = `
UPDATE reward_outbox
SET status = 'pending', updated_at = now()
WHERE status = 'claimed' AND updated_at < now() - make_interval(secs => $1)`

	markDoneSQL = `UPDATE reward_outbox SET status = 'done', tx_hash = $2, updated_at = now() WHERE id = $1`

	// Exponential backoff capped at five minutes; rows past the attempt
	// limit park as failed for the reconciliation report.
	markFailedSQL = `
UPDATE reward_outbox
SET attempt_count = attempt_count + 1,
    status = CASE WHEN attempt_count + 1 >= $2 THEN 'failed' ELSE 'pending' END,
    next_attempt_at = now() + make_interval(secs => LEAST(POWER(2, attempt_count + 1), 300)),
    updated_at = now()
WHERE id = $1`
)

// staleClaimCutoff bounds how long a claim may sit before another
// worker takes it over. Well past the chain confirm timeout.
const staleClaimCutoff = 10 * time.Minute

// Dispatcher submits one on-chain transfer and blocks until it
// confirms or the bounded wait gives up.
type Dispatcher interface {
	Award(ctx context.Context, wallet string, coins int64) (txHash string, err error)
}

// Config controls batch size and polling cadence.
type Config struct {
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
}

// Worker drains pending reward intents and applies them on-chain.
type Worker struct {
	db    *sql.DB
	chain Dispatcher
	cfg   Config
	log   zerolog.Logger
}

func NewWorker(db *sql.DB, chain Dispatcher, cfg Config, log zerolog.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	return &Worker{db: db, chain: chain, cfg: cfg, log: log}
}

// Run polls until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("interval", w.cfg.Interval).Msg("reward worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("reward worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				// Log and continue; per-row backoff prevents hot-looping.
				w.log.Error().Err(err).Msg("reward worker cycle")
			}
		}
	}
}

type job struct {
	id     int64
	wallet string
	amount int64
}

// ProcessOnce claims one batch of ready intents, dispatches each, and
// records the outcome. The claim is a single atomic statement, so no
// locks are held while a transfer waits on confirmation; claims left
// behind by a crashed worker are requeued first.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, requeueStaleSQL, int(staleClaimCutoff.Seconds())); err != nil {
		return err
	}

	jobs, err := w.claimBatch(ctx)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		txHash, err := w.chain.Award(ctx, j.wallet, j.amount)
		if err != nil {
			w.log.Warn().Err(err).Int64("id", j.id).Str("wallet", j.wallet).Msg("reward dispatch failed")
			if _, e := w.db.ExecContext(ctx, markFailedSQL, j.id, w.cfg.MaxAttempts); e != nil {
				w.log.Error().Err(e).Int64("id", j.id).Msg("markFailed error")
			}
			continue
		}

		w.log.Info().Int64("id", j.id).Str("wallet", j.wallet).
			Int64("amount", j.amount).Str("tx", txHash).Msg("reward dispatched")
		if _, e := w.db.ExecContext(ctx, markDoneSQL, j.id, txHash); e != nil {
			w.log.Error().Err(e).Int64("id", j.id).Msg("markDone error")
		}
	}

	return nil
}

func (w *Worker) claimBatch(ctx context.Context) ([]job, error) {
	rows, err := w.db.QueryContext(ctx, claimReadySQL, w.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []job
	for rows.Next() {
		var j job
		if err := rows.Scan(&j.id, &j.wallet, &j.amount); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
