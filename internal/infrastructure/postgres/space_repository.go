package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
	"github.com/storenextdoor/stock-service/internal/domain/repository"
)

var _ repository.SpaceRepository = (*SpaceRepo)(nil)

// SpaceRepo implementación de SpaceRepository sobre PostgreSQL (solo lectura).
type SpaceRepo struct {
	q Querier
}

// NewSpaceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpaceRepository(q Querier) *SpaceRepo {
	return &SpaceRepo{q: q}
}

// FindSpaceWithActiveBookings carga el espacio (excluyendo modo AFFILIATE) con
// sus reservas activas que tocan [from, to] o no tienen move-out, ordenadas por
// move_in_date ascendente. Devuelve (nil, nil) si no existe.
func (r *SpaceRepo) FindSpaceWithActiveBookings(ctx context.Context, spaceID int64, from, to time.Time) (*entity.Space, error) {
	spaceQuery := `
		SELECT id, site_id, status,
		       COALESCE(total_units, 0), COALESCE(available_units, 0),
		       COALESCE(stock_management_type, ''), COALESCE(third_party_space_id, '')
		FROM spaces
		WHERE id = $1
		  AND (stock_management_type IS NULL OR stock_management_type <> $2)`

	var s entity.Space
	err := r.q.QueryRow(ctx, spaceQuery, spaceID, string(entity.StockAffiliate)).Scan(
		&s.ID, &s.SiteID, &s.Status,
		&s.TotalUnits, &s.AvailableUnits,
		&s.StockManagementType, &s.ThirdPartySpaceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get space: %w", err)
	}

	bookingsQuery := `
		SELECT id, site_id, space_id, move_in_date, move_out_date, status
		FROM bookings
		WHERE space_id = $1
		  AND status = ANY($2)
		  AND move_in_date <= $3
		  AND (move_out_date >= $4 OR move_out_date IS NULL)
		ORDER BY move_in_date ASC`

	statuses := make([]string, 0, len(entity.ActiveBookingStatuses))
	for _, st := range entity.ActiveBookingStatuses {
		statuses = append(statuses, string(st))
	}

	rows, err := r.q.Query(ctx, bookingsQuery, spaceID, statuses, to, from)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b entity.Booking
		if err := rows.Scan(&b.ID, &b.SiteID, &b.SpaceID, &b.MoveInDate, &b.MoveOutDate, &b.Status); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		s.Bookings = append(s.Bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return &s, nil
}
