package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecosphere-community/eco-backend/internal/marketplace/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const itemCols = `id::text, name, description, price, seller_id, sold,
coalesce(bought_by, ''), image_content_type is not null, created_at`

func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.SellerID,
		&it.Sold, &it.BoughtBy, &it.HasImage, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Create(ctx context.Context, it *domain.Item) (*domain.Item, error) {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}

	const q = `
insert into marketplace_items (id, name, description, price, seller_id, image_data, image_content_type)
values ($1::uuid, $2, $3, $4, $5, $6, nullif($7, ''))
returning ` + itemCols + `;`

	return scanItem(r.db.QueryRow(ctx, q,
		it.ID, it.Name, it.Description, it.Price, it.SellerID, it.ImageData, it.ImageContentType))
}

// ListUnsold returns listings still for sale, newest first.
func (r *Repo) ListUnsold(ctx context.Context) ([]domain.Item, error) {
	const q = `select ` + itemCols + ` from marketplace_items where not sold order by created_at desc;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Item, 0, 16)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	const q = `select ` + itemCols + ` from marketplace_items where id = $1::uuid;`
	return scanItem(r.db.QueryRow(ctx, q, itemID))
}

// GetImage returns the stored image bytes and content type for an item.
func (r *Repo) GetImage(ctx context.Context, itemID string) ([]byte, string, error) {
	const q = `select image_data, coalesce(image_content_type, '') from marketplace_items where id = $1::uuid;`

	var data []byte
	var ct string
	err := r.db.QueryRow(ctx, q, itemID).Scan(&data, &ct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", domain.ErrItemNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", domain.ErrNoImage
	}
	return data, ct, nil
}

// Purchase flips the item to sold and appends the buyer's purchase
// snapshot in one transaction. The conditional update is the sole
// guard against concurrent double-purchase.
func (r *Repo) Purchase(ctx context.Context, itemID, buyerID string, now time.Time) (*domain.Item, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const flip = `
update marketplace_items
set sold = true, bought_by = $2
where id = $1::uuid and not sold
returning ` + itemCols + `;`

	it, err := scanItem(tx.QueryRow(ctx, flip, itemID, buyerID))
	if errors.Is(err, domain.ErrItemNotFound) {
		// Zero rows: distinguish missing from already sold.
		var sold bool
		lookupErr := tx.QueryRow(ctx,
			`select sold from marketplace_items where id = $1::uuid;`, itemID).Scan(&sold)
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, domain.ErrAlreadySold
	}
	if err != nil {
		return nil, err
	}

	const insertPurchase = `
insert into purchases (user_id, item_id, name, description, price, purchased_at)
values ($1, $2::uuid, $3, $4, $5, $6);`

	if _, err := tx.Exec(ctx, insertPurchase, buyerID, it.ID, it.Name, it.Description, it.Price, now); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// FK violation on user_id: buyer does not exist, nothing commits.
			return nil, domain.ErrBuyerNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

// Delete removes an unsold item. Returns ErrAlreadySold when the item
// exists but was sold, ErrItemNotFound when it never existed.
func (r *Repo) Delete(ctx context.Context, itemID string) error {
	tag, err := r.db.Exec(ctx,
		`delete from marketplace_items where id = $1::uuid and not sold;`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var sold bool
	err = r.db.QueryRow(ctx,
		`select sold from marketplace_items where id = $1::uuid;`, itemID).Scan(&sold)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrItemNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrAlreadySold
}

// SoldWithoutPurchase lists item IDs marked sold that have no matching
// purchase record. Used by the nightly reconciliation job.
func (r *Repo) SoldWithoutPurchase(ctx context.Context) ([]string, error) {
	const q = `
select i.id::text
from marketplace_items i
left join purchases p on p.item_id = i.id
where i.sold and p.item_id is null;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RepairPurchase re-creates the missing purchase snapshot from the item
// row itself. Only meaningful for rows reported by SoldWithoutPurchase.
func (r *Repo) RepairPurchase(ctx context.Context, itemID string) error {
	const q = `
insert into purchases (user_id, item_id, name, description, price, purchased_at)
select bought_by, id, name, description, price, now()
from marketplace_items
where id = $1::uuid and sold and bought_by is not null
on conflict do nothing;`

	_, err := r.db.Exec(ctx, q, itemID)
	return err
}
