package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecosphere-community/eco-backend/internal/fundraisers/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, f *domain.Fundraiser) (*domain.Fundraiser, error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	const q = `
insert into fundraisers (id, title, description, goal, created_by, created_by_name)
values ($1::uuid, $2, $3, $4, $5, $6)
returning id::text, title, description, goal, raised, created_by, created_by_name, created_at;
`
	var out domain.Fundraiser
	err := r.db.QueryRow(ctx, q, f.ID, f.Title, f.Description, f.Goal, f.CreatedBy, f.CreatedByName).
		Scan(&out.ID, &out.Title, &out.Description, &out.Goal, &out.Raised,
			&out.CreatedBy, &out.CreatedByName, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	out.Donations = []domain.Donation{}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*domain.Fundraiser, error) {
	const q = `
select id::text, title, description, goal, raised, created_by, created_by_name, created_at
from fundraisers where id = $1::uuid;
`
	var out domain.Fundraiser
	err := r.db.QueryRow(ctx, q, id).
		Scan(&out.ID, &out.Title, &out.Description, &out.Goal, &out.Raised,
			&out.CreatedBy, &out.CreatedByName, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFundraiserNotFound
	}
	if err != nil {
		return nil, err
	}

	donations, err := r.donations(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Donations = donations
	return &out, nil
}

func (r *Repo) donations(ctx context.Context, fundraiserID string) ([]domain.Donation, error) {
	const q = `
select user_id, donor_type, coalesce(name, ''), amount, donated_at
from donations
where fundraiser_id = $1::uuid
order by donated_at asc;
`
	rows, err := r.db.Query(ctx, q, fundraiserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Donation, 0, 8)
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.UserID, &d.DonorType, &d.Name, &d.Amount, &d.DonatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// List returns every fundraiser with its donations, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Fundraiser, error) {
	const q = `
select id::text, title, description, goal, raised, created_by, created_by_name, created_at
from fundraisers order by created_at desc;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Fundraiser, 0, 16)
	for rows.Next() {
		var f domain.Fundraiser
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Goal, &f.Raised,
			&f.CreatedBy, &f.CreatedByName, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		donations, err := r.donations(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Donations = donations
	}
	return out, nil
}

// AddDonation appends the donation and bumps the raised total in one
// transaction, keeping raised equal to the sum of donation amounts.
func (r *Repo) AddDonation(ctx context.Context, fundraiserID string, d domain.Donation, now time.Time) (*domain.Fundraiser, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const bump = `
update fundraisers
set raised = raised + $2, updated_at = now()
where id = $1::uuid;
`
	tag, err := tx.Exec(ctx, bump, fundraiserID, d.Amount)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrFundraiserNotFound
	}

	const insert = `
insert into donations (fundraiser_id, user_id, donor_type, name, amount, donated_at)
values ($1::uuid, $2, $3, nullif($4, ''), $5, $6);
`
	if _, err := tx.Exec(ctx, insert, fundraiserID, d.UserID, d.DonorType, d.Name, d.Amount, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, fundraiserID)
}

// Delete removes a fundraiser and its donations (FK cascade).
func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `delete from fundraisers where id = $1::uuid;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFundraiserNotFound
	}
	return nil
}

// TopDonors groups donation totals by donor display name, descending.
func (r *Repo) TopDonors(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	const q = `
select coalesce(name, ''), sum(amount) as total
from donations
group by coalesce(name, '')
order by total desc;
`
	return r.ranking(ctx, q)
}

// TopRaisers groups raised totals by fundraiser creator, descending.
func (r *Repo) TopRaisers(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	const q = `
select created_by_name, sum(raised) as total
from fundraisers
group by created_by, created_by_name
order by total desc;
`
	return r.ranking(ctx, q)
}

func (r *Repo) ranking(ctx context.Context, q string) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.LeaderboardEntry, 0, 16)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Label, &e.Total); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
