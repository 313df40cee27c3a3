package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mkdomain "github.com/ecosphere-community/eco-backend/internal/marketplace/domain"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	WalletAddress  string    `json:"walletAddress,omitempty"`
	PendingRewards int       `json:"pendingRewards"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	UserID         string
	Email          string
	Name           string
	ProfilePicture string
}

// Upsert creates or refreshes the profile row keyed by the identity
// provider's user id. The wallet address is never touched here.
func (r *Repo) Upsert(ctx context.Context, u UpsertUser) (*User, error) {
	if u.UserID == "" {
		return nil, fmt.Errorf("userId required")
	}

	const q = `
insert into users (user_id, email, name, profile_picture, updated_at)
values ($1, $2, $3, nullif($4, ''), now())
on conflict (user_id) do update
set
  email = excluded.email,
  name = excluded.name,
  profile_picture = coalesce(excluded.profile_picture, users.profile_picture),
  updated_at = now()
returning user_id, email, name, coalesce(profile_picture, ''), coalesce(wallet_address, ''), created_at;
`
	var out User
	err := r.db.QueryRow(ctx, q, u.UserID, u.Email, u.Name, u.ProfilePicture).
		Scan(&out.UserID, &out.Email, &out.Name, &out.ProfilePicture, &out.WalletAddress, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, userID string) (*User, error) {
	const q = `
select u.user_id, u.email, u.name, coalesce(u.profile_picture, ''), coalesce(u.wallet_address, ''), u.created_at,
  (select count(*) from reward_outbox o where o.user_id = u.user_id and o.status = 'pending')
from users u
where u.user_id = $1;
`
	var out User
	err := r.db.QueryRow(ctx, q, userID).
		Scan(&out.UserID, &out.Email, &out.Name, &out.ProfilePicture, &out.WalletAddress,
			&out.CreatedAt, &out.PendingRewards)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Name returns the display name for a user id, or ErrUserNotFound.
func (r *Repo) Name(ctx context.Context, userID string) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `select name from users where user_id = $1;`, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return name, err
}

// Wallet returns the on-file wallet address, empty when none is set.
func (r *Repo) Wallet(ctx context.Context, userID string) (string, error) {
	var w string
	err := r.db.QueryRow(ctx,
		`select coalesce(wallet_address, '') from users where user_id = $1;`, userID).Scan(&w)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return w, err
}

func (r *Repo) SetWallet(ctx context.Context, userID, walletAddress string) (*User, error) {
	const q = `
update users
set wallet_address = $2, updated_at = now()
where user_id = $1
returning user_id, email, name, coalesce(profile_picture, ''), coalesce(wallet_address, ''), created_at;
`
	var out User
	err := r.db.QueryRow(ctx, q, userID, walletAddress).
		Scan(&out.UserID, &out.Email, &out.Name, &out.ProfilePicture, &out.WalletAddress, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Purchases lists the user's purchase history, oldest first.
func (r *Repo) Purchases(ctx context.Context, userID string) ([]mkdomain.PurchaseRecord, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`select exists(select 1 from users where user_id = $1);`, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	const q = `
select item_id::text, name, description, price, purchased_at
from purchases
where user_id = $1
order by purchased_at asc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mkdomain.PurchaseRecord, 0, 8)
	for rows.Next() {
		var p mkdomain.PurchaseRecord
		if err := rows.Scan(&p.ItemID, &p.Name, &p.Description, &p.Price, &p.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
