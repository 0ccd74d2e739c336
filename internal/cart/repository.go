package cart

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

// Repository persists one cart per user.
type Repository interface {
	Save(ctx context.Context, userID string, lines []models.CartLine) error
	// Load returns the stored cart, or an empty sequence when the user
	// has no cart document yet. A missing document is never an error.
	Load(ctx context.Context, userID string) ([]models.CartLine, error)
	Clear(ctx context.Context, userID string) error
}

// StoreRepository keeps the cart under the "cart" field of the user
// document. All writes are merge writes, so sibling fields written by
// other features or newer client versions survive untouched.
type StoreRepository struct {
	store *docstore.Client
	logg  *logger.Logger
}

func NewStoreRepository(store *docstore.Client, logg *logger.Logger) *StoreRepository {
	return &StoreRepository{store: store, logg: logg}
}

func (r *StoreRepository) Save(ctx context.Context, userID string, lines []models.CartLine) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	_, err := r.store.User(userID).Set(ctx, map[string]any{
		"cart": docstore.EncodeCartLines(lines),
	}, firestore.MergeAll)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "save cart")
	}
	return nil
}

func (r *StoreRepository) Load(ctx context.Context, userID string) ([]models.CartLine, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := r.store.User(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "load cart")
	}

	lines, skipped := docstore.DecodeCartLines(snap.Data()["cart"])
	if skipped > 0 && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"user_id": userID,
			"skipped": skipped,
		})
		r.logg.Warn(ctx, "skipped malformed cart entries")
	}
	return lines, nil
}

func (r *StoreRepository) Clear(ctx context.Context, userID string) error {
	return r.Save(ctx, userID, nil)
}
