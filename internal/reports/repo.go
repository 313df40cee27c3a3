package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Report is a geo-tagged citizen-science observation. Append-only.
type Report struct {
	ID         string    `json:"_id"`
	ReportName string    `json:"reportName"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, reportName string, lat, lng float64) (*Report, error) {
	const q = `
insert into citizen_reports (id, report_name, lat, lng)
values ($1::uuid, $2, $3, $4)
returning id::text, report_name, lat, lng, created_at;
`
	var out Report
	err := r.db.QueryRow(ctx, q, uuid.New().String(), reportName, lat, lng).
		Scan(&out.ID, &out.ReportName, &out.Lat, &out.Lng, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) List(ctx context.Context) ([]Report, error) {
	const q = `select id::text, report_name, lat, lng, created_at from citizen_reports order by created_at asc;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Report, 0, 32)
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.ReportName, &rep.Lat, &rep.Lng, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
