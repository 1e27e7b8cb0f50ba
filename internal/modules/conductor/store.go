// README: Validation event journal backed by PostgreSQL.
package conductor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"busline/internal/types"
)

// Store appends to the validation_events table:
//
//	id bigserial primary key, bus_code text, kind text,
//	ticket_id text, destination text, created_at timestamptz
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO validation_events (
			bus_code, kind, ticket_id, destination, created_at
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`,
		e.BusCode,
		e.Kind,
		string(e.TicketID),
		e.Destination,
		e.CreatedAt,
	)
	return err
}

// RecentForBus returns the latest events for a bus, newest first.
func (s *Store) RecentForBus(ctx context.Context, busCode string, limit int) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT bus_code, kind, COALESCE(ticket_id, ''), COALESCE(destination, ''), created_at
		FROM validation_events
		WHERE bus_code = $1
		ORDER BY created_at DESC
		LIMIT $2`, busCode, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ticketID string
		if err := rows.Scan(&e.BusCode, &e.Kind, &ticketID, &e.Destination, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.TicketID = types.ID(ticketID)
		events = append(events, e)
	}
	return events, rows.Err()
}
