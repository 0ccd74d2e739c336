package favorites

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/phermann/shopcore/pkg/docstore"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// Repository persists one favorites list per user.
type Repository interface {
	Save(ctx context.Context, userID string, products []models.Product) error
	// Load returns the stored favorites, empty when the user has no
	// document yet.
	Load(ctx context.Context, userID string) ([]models.Product, error)
}

// StoreRepository keeps the favorites under the "favorites" field of the
// user document, merge-written the same way the cart field is.
type StoreRepository struct {
	store *docstore.Client
	logg  *logger.Logger
}

func NewStoreRepository(store *docstore.Client, logg *logger.Logger) *StoreRepository {
	return &StoreRepository{store: store, logg: logg}
}

func (r *StoreRepository) Save(ctx context.Context, userID string, products []models.Product) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	_, err := r.store.User(userID).Set(ctx, map[string]any{
		"favorites": docstore.EncodeFavorites(products),
	}, firestore.MergeAll)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "save favorites")
	}
	return nil
}

func (r *StoreRepository) Load(ctx context.Context, userID string) ([]models.Product, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := r.store.User(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "load favorites")
	}

	products, skipped := docstore.DecodeFavorites(snap.Data()["favorites"])
	if skipped > 0 && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"user_id": userID,
			"skipped": skipped,
		})
		r.logg.Warn(ctx, "skipped malformed favorites entries")
	}
	return products, nil
}
