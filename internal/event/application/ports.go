package application

import (
	"context"

	"github.com/dmehra2102/eventia/internal/event/domain"
)

type EventRepository interface {
	Get(ctx context.Context, id string) (domain.Event, error)
	// ListByCategory returns one page of events in categoryID other than
	// excludeID, and the total number of such events.
	ListByCategory(ctx context.Context, categoryID, excludeID string, offset, limit int) ([]domain.Event, int, error)
}
