package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/eventia/internal/event/domain"
)

const selectEvent = `
	SELECT e.id, e.title, e.description, e.location, e.image_url,
	       e.start_date_time, e.end_date_time, e.price, e.is_free, e.url,
	       COALESCE(c.id, ''), COALESCE(c.name, ''),
	       COALESCE(u.id, ''), COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
	FROM events e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN users u ON u.id = e.organizer_id`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, selectEvent+` WHERE e.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, err
}

func (r *Repository) ListByCategory(ctx context.Context, categoryID, excludeID string, offset, limit int) ([]domain.Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE category_id=$1 AND id<>$2`, categoryID, excludeID).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, selectEvent+`
		WHERE e.category_id=$1 AND e.id<>$2
		ORDER BY e.start_date_time DESC
		OFFSET $3 LIMIT $4`, categoryID, excludeID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.ImageURL,
		&e.StartDateTime, &e.EndDateTime, &e.Price, &e.IsFree, &e.URL,
		&e.Category.ID, &e.Category.Name,
		&e.Organizer.ID, &e.Organizer.Email, &e.Organizer.FirstName, &e.Organizer.LastName)
	return e, err
}
