package catalog

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/phermann/shopcore/pkg/docstore"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/models"
)

// StoreRepository implements ProductRepository against the document
// store's products collection, used when the catalog is mirrored there
// instead of served by the HTTP API.
type StoreRepository struct {
	store *docstore.Client
}

func NewStoreRepository(store *docstore.Client) *StoreRepository {
	return &StoreRepository{store: store}
}

func (r *StoreRepository) FetchAll(ctx context.Context) ([]models.Product, error) {
	return r.collect(ctx, r.store.Products().Query)
}

func (r *StoreRepository) FetchByCategory(ctx context.Context, category string) ([]models.Product, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	return r.collect(ctx, r.store.Products().Where("category", "==", trimmed))
}

// FetchByID queries on the numeric catalog id, not the document id; the
// mirror keys documents arbitrarily. Zero or ambiguous hits both resolve
// to not found.
func (r *StoreRepository) FetchByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	products, err := r.collect(ctx, r.store.Products().Where("id", "==", id))
	if err != nil {
		return nil, err
	}
	if len(products) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}

	product := products[0]
	return &product, nil
}

func (r *StoreRepository) FetchCategories(ctx context.Context) ([]string, error) {
	products, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories, nil
}

func (r *StoreRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	products, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByQuery(products, query), nil
}

func (r *StoreRepository) collect(ctx context.Context, query firestore.Query) ([]models.Product, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var products []models.Product
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "iterate products")
		}
		product, ok := docstore.DecodeProduct(snap.Data())
		if !ok {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}
