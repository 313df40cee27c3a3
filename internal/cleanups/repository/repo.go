package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecosphere-community/eco-backend/internal/cleanups/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	const q = `
insert into cleanup_events (id, title, location, event_date, created_by, created_by_name)
values ($1::uuid, $2, $3, $4, $5, $6)
returning id::text, title, location, event_date, created_by, created_by_name, created_at;
`
	var out domain.Event
	err := r.db.QueryRow(ctx, q, e.ID, e.Title, e.Location, e.Date, e.CreatedBy, e.CreatedByName).
		Scan(&out.ID, &out.Title, &out.Location, &out.Date,
			&out.CreatedBy, &out.CreatedByName, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	out.Participants = []domain.Participant{}
	out.Reports = []domain.Report{}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*domain.Event, error) {
	const q = `
select id::text, title, location, event_date, created_by, created_by_name, created_at
from cleanup_events where id = $1::uuid;
`
	var out domain.Event
	err := r.db.QueryRow(ctx, q, id).
		Scan(&out.ID, &out.Title, &out.Location, &out.Date,
			&out.CreatedBy, &out.CreatedByName, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	if out.Participants, err = r.participants(ctx, id); err != nil {
		return nil, err
	}
	if out.Reports, err = r.reports(ctx, id); err != nil {
		return nil, err
	}
	out.ParticipantCount = len(out.Participants)
	return &out, nil
}

func (r *Repo) participants(ctx context.Context, eventID string) ([]domain.Participant, error) {
	const q = `
select user_id, name, joined_at
from event_participants
where event_id = $1::uuid
order by joined_at asc;
`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Participant, 0, 8)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.UserID, &p.Name, &p.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// reports joins the reporter's current display name onto each report.
func (r *Repo) reports(ctx context.Context, eventID string) ([]domain.Report, error) {
	const q = `
select rp.user_id, coalesce(u.name, 'Unknown'), rp.report_text, rp.trash_collected_kg,
  coalesce(rp.image_url, ''), rp.created_at
from event_reports rp
left join users u on u.user_id = rp.user_id
where rp.event_id = $1::uuid
order by rp.created_at asc;
`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Report, 0, 8)
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.UserID, &rep.UserName, &rep.ReportText,
			&rep.TrashCollectedKg, &rep.ImageURL, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]domain.Event, error) {
	const q = `
select id::text, title, location, event_date, created_by, created_by_name, created_at
from cleanup_events order by created_at desc;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Event, 0, 16)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Location, &e.Date,
			&e.CreatedBy, &e.CreatedByName, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		var err error
		if out[i].Participants, err = r.participants(ctx, out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Reports, err = r.reports(ctx, out[i].ID); err != nil {
			return nil, err
		}
		out[i].ParticipantCount = len(out[i].Participants)
	}
	return out, nil
}

// AddParticipant appends a participant; the (event_id, user_id) primary
// key turns a repeat join into ErrAlreadyJoined.
func (r *Repo) AddParticipant(ctx context.Context, eventID, userID, name string, now time.Time) error {
	const q = `
insert into event_participants (event_id, user_id, name, joined_at)
values ($1::uuid, $2, $3, $4);
`
	_, err := r.db.Exec(ctx, q, eventID, userID, name, now)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrAlreadyJoined
		case "23503":
			return domain.ErrEventNotFound
		}
	}
	return err
}

func (r *Repo) AddReport(ctx context.Context, eventID string, rep domain.Report) error {
	const q = `
insert into event_reports (event_id, user_id, report_text, trash_collected_kg, image_url, created_at)
values ($1::uuid, $2, $3, $4, nullif($5, ''), $6);
`
	_, err := r.db.Exec(ctx, q, eventID, rep.UserID, rep.ReportText,
		rep.TrashCollectedKg, rep.ImageURL, rep.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrEventNotFound
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `delete from cleanup_events where id = $1::uuid;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
