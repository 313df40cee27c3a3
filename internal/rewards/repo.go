package rewards

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecosphere-community/eco-backend/internal/rewards/domain"
)

// Repo enqueues reward intents from the API process. The outbox worker
// owns dequeue and dispatch.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Enqueue(ctx context.Context, userID, wallet string, amount int64, reason string) error {
	const q = `
insert into reward_outbox (user_id, wallet_address, amount, reason)
values ($1, $2, $3, $4);
`
	_, err := r.db.Exec(ctx, q, userID, wallet, amount, reason)
	return err
}

// PendingOlderThan lists intents that have sat pending for longer than
// the cutoff; the reconciliation job logs them for operators.
func (r *Repo) PendingOlderThan(ctx context.Context, cutoffSeconds int) ([]domain.Intent, error) {
	const q = `
select id, user_id, wallet_address, amount, reason, status, attempt_count, coalesce(tx_hash, ''), created_at
from reward_outbox
where status = 'pending' and created_at < now() - make_interval(secs => $1)
order by id asc;
`
	rows, err := r.db.Query(ctx, q, cutoffSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Intent
	for rows.Next() {
		var in domain.Intent
		if err := rows.Scan(&in.ID, &in.UserID, &in.Wallet, &in.Amount, &in.Reason,
			&in.Status, &in.AttemptCount, &in.TxHash, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
