// README: Lost & found store backed by PostgreSQL.
package lostfound

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"busline/internal/types"
)

var ErrNotFound = errors.New("report not found")

// Store persists reports in the lostfound_reports table:
//
//	id text primary key, bus_code text, category text, description text,
//	destination text, reported_by text, status text, found_by text,
//	reported_at timestamptz
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Report) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO lostfound_reports (
			id, bus_code, category, description, destination,
			reported_by, status, found_by, reported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(r.ID),
		r.BusCode,
		r.Category,
		r.Description,
		r.Destination,
		r.ReportedBy,
		string(r.Status),
		r.FoundBy,
		r.ReportedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Report, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, bus_code, category, description, destination,
		       reported_by, status, found_by, reported_at
		FROM lostfound_reports
		WHERE id = $1`, string(id),
	)
	return scanReport(row)
}

// ListByBus returns reports for a bus code, newest first. An empty busCode
// returns everything.
func (s *Store) ListByBus(ctx context.Context, busCode string) ([]*Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, bus_code, category, description, destination,
		       reported_by, status, found_by, reported_at
		FROM lostfound_reports
		WHERE ($1 = '' OR bus_code = $1)
		ORDER BY reported_at DESC`, busCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// ListByStatus returns reports for a bus in a given status, newest first.
func (s *Store) ListByStatus(ctx context.Context, busCode string, status Status) ([]*Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, bus_code, category, description, destination,
		       reported_by, status, found_by, reported_at
		FROM lostfound_reports
		WHERE ($1 = '' OR bus_code = $1) AND status = $2
		ORDER BY reported_at DESC`, busCode, string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) MarkFound(ctx context.Context, id types.ID, foundBy string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE lostfound_reports
		SET status = $1, found_by = $2
		WHERE id = $3`,
		string(StatusFound), foundBy, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var r Report
	var id, status string
	err := row.Scan(
		&id, &r.BusCode, &r.Category, &r.Description, &r.Destination,
		&r.ReportedBy, &status, &r.FoundBy, &r.ReportedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.ID = types.ID(id)
	r.Status = Status(status)
	return &r, nil
}
