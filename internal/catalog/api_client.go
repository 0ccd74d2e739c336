package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phermann/shopcore/pkg/config"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/models"
)

const errorBodyReadLimit int64 = 1024

// APIRepository implements ProductRepository against the read-only
// storefront catalog API (FakeStore-shaped JSON endpoints). FetchByID and
// Search operate client-side over the full fetched set; the API exposes
// no lookup or full-text surface.
type APIRepository struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*APIRepository)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *APIRepository) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewAPIRepository builds the catalog client from configuration.
func NewAPIRepository(cfg config.CatalogConfig, opts ...Option) (*APIRepository, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	repo := &APIRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}

	return repo, nil
}

// FetchAll returns every product the catalog knows.
func (r *APIRepository) FetchAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchCategories returns the catalog's category names.
func (r *APIRepository) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FetchByCategory returns the products belonging to one category.
func (r *APIRepository) FetchByCategory(ctx context.Context, category string) ([]models.Product, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	var products []models.Product
	if err := r.getJSON(ctx, "/products/category/"+url.PathEscape(trimmed), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchByID resolves a single product from the fetched set.
func (r *APIRepository) FetchByID(ctx context.Context, id int) (*models.Product, error) {
	products, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
}

// Search filters the full fetched set by the query.
func (r *APIRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	products, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByQuery(products, query), nil
}

func (r *APIRepository) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog url")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeNetwork,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"invalid catalog response")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode catalog response")
	}
	return nil
}
