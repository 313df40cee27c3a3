package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Every statement is idempotent so the API can run it on each start.
var schemaStatements = []string{
	`create table if not exists users (
		user_id         text primary key,
		email           text not null,
		name            text not null,
		profile_picture text,
		wallet_address  text,
		created_at      timestamptz not null default now(),
		updated_at      timestamptz not null default now()
	)`,
	`create table if not exists marketplace_items (
		id                 uuid primary key,
		name               text not null,
		description        text not null default '',
		price              double precision not null,
		seller_id          text not null,
		sold               boolean not null default false,
		bought_by          text,
		image_data         bytea,
		image_content_type text,
		created_at         timestamptz not null default now()
	)`,
	`create table if not exists purchases (
		id           bigserial primary key,
		user_id      text not null references users(user_id),
		item_id      uuid not null,
		name         text not null,
		description  text not null default '',
		price        double precision not null,
		purchased_at timestamptz not null default now()
	)`,
	`create table if not exists fundraisers (
		id              uuid primary key,
		title           text not null,
		description     text not null default '',
		goal            double precision not null,
		raised          double precision not null default 0,
		created_by      text not null,
		created_by_name text not null default '',
		created_at      timestamptz not null default now(),
		updated_at      timestamptz not null default now()
	)`,
	`create table if not exists donations (
		id            bigserial primary key,
		fundraiser_id uuid not null references fundraisers(id) on delete cascade,
		user_id       text not null,
		donor_type    text not null,
		name          text,
		amount        double precision not null,
		donated_at    timestamptz not null default now()
	)`,
	`create table if not exists cleanup_events (
		id              uuid primary key,
		title           text not null,
		location        text not null,
		event_date      text not null,
		created_by      text not null,
		created_by_name text not null default '',
		created_at      timestamptz not null default now()
	)`,
	`create table if not exists event_participants (
		event_id  uuid not null references cleanup_events(id) on delete cascade,
		user_id   text not null,
		name      text not null default '',
		joined_at timestamptz not null default now(),
		primary key (event_id, user_id)
	)`,
	`create table if not exists event_reports (
		id                 bigserial primary key,
		event_id           uuid not null references cleanup_events(id) on delete cascade,
		user_id            text not null,
		report_text        text not null,
		trash_collected_kg double precision not null default 0,
		image_url          text,
		created_at         timestamptz not null default now()
	)`,
	`create table if not exists citizen_reports (
		id          uuid primary key,
		report_name text not null,
		lat         double precision not null,
		lng         double precision not null,
		created_at  timestamptz not null default now()
	)`,
	`create table if not exists reward_outbox (
		id              bigserial primary key,
		user_id         text not null,
		wallet_address  text not null,
		amount          bigint not null,
		reason          text not null,
		status          text not null default 'pending',
		attempt_count   int not null default 0,
		next_attempt_at timestamptz not null default now(),
		tx_hash         text,
		created_at      timestamptz not null default now(),
		updated_at      timestamptz not null default now()
	)`,
	`create index if not exists idx_marketplace_items_unsold on marketplace_items (created_at) where not sold`,
	`create index if not exists idx_purchases_user on purchases (user_id)`,
	`create index if not exists idx_donations_fundraiser on donations (fundraiser_id)`,
	`create index if not exists idx_reward_outbox_ready on reward_outbox (next_attempt_at) where status = 'pending'`,
}

// EnsureSchema creates every table and index the service reads or writes.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
