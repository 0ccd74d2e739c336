package catalog

import (
	"context"

	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/models"
)

// Service fronts a ProductRepository and reports browse activity to the
// telemetry sink. Reads delegate unchanged; only search adds an event.
type Service struct {
	repo ProductRepository
	sink telemetry.Sink
}

func NewService(repo ProductRepository, sink telemetry.Sink) *Service {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Service{repo: repo, sink: sink}
}

func (s *Service) FetchAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.FetchAll(ctx)
}

func (s *Service) FetchByID(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.FetchByID(ctx, id)
}

func (s *Service) FetchByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.FetchByCategory(ctx, category)
}

func (s *Service) FetchCategories(ctx context.Context) ([]string, error) {
	return s.repo.FetchCategories(ctx)
}

// Search reports the search term before delegating; the event fires
// whether or not the lookup succeeds.
func (s *Service) Search(ctx context.Context, query string) ([]models.Product, error) {
	s.sink.Publish(ctx, telemetry.Search(query))
	return s.repo.Search(ctx, query)
}
