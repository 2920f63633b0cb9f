package application

import (
	"context"

	"github.com/dmehra2102/eventia/internal/event/domain"
)

const (
	DefaultRelatedLimit = 3
	MaxRelatedLimit     = 50
	// MaxRelatedPage keeps (page-1)*limit well inside int range.
	MaxRelatedPage = 100000
)

type Service struct {
	repo EventRepository
}

func NewService(repo EventRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (domain.Event, error) {
	return s.repo.Get(ctx, id)
}

// RelatedPage is one page of events sharing a category.
type RelatedPage struct {
	Data       []domain.Event `json:"data"`
	TotalPages int            `json:"totalPages"`
}

// Related lists other events of the same category. page is 1-based;
// values below 1 are treated as 1 and values above MaxRelatedPage as
// MaxRelatedPage.
func (s *Service) Related(ctx context.Context, eventID string, page, limit int) (RelatedPage, error) {
	ev, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return RelatedPage{}, err
	}
	page = min(max(page, 1), MaxRelatedPage)
	if limit < 1 {
		limit = DefaultRelatedLimit
	}
	limit = min(limit, MaxRelatedLimit)
	events, total, err := s.repo.ListByCategory(ctx, ev.Category.ID, ev.ID, (page-1)*limit, limit)
	if err != nil {
		return RelatedPage{}, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return RelatedPage{
		Data:       events,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
