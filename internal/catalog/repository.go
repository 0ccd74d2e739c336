package catalog

import (
	"context"
	"strings"

	"github.com/phermann/shopcore/pkg/models"
)

// ProductRepository is the read-only catalog surface the engines consume.
type ProductRepository interface {
	FetchAll(ctx context.Context) ([]models.Product, error)
	FetchByID(ctx context.Context, id int) (*models.Product, error)
	FetchByCategory(ctx context.Context, category string) ([]models.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	// Search matches the query case-insensitively as a substring of
	// title, description or category, client-side over the full set.
	Search(ctx context.Context, query string) ([]models.Product, error)
}

func matchesQuery(p models.Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

func filterByQuery(products []models.Product, query string) []models.Product {
	matches := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matchesQuery(p, query) {
			matches = append(matches, p)
		}
	}
	return matches
}
