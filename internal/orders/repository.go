package orders

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/phermann/shopcore/pkg/docstore"
	"github.com/phermann/shopcore/pkg/enums"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// Repository persists orders under the owning user's history. Order ids
// are supplied by the caller; Create must stay idempotent under retry.
type Repository interface {
	Create(ctx context.Context, userID string, order models.Order) error
	FetchForUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID string, newStatus enums.OrderStatus) error
}

// StoreRepository keeps one document per order in the user's orders
// subcollection, keyed by the order id.
type StoreRepository struct {
	store *docstore.Client
	logg  *logger.Logger
}

func NewStoreRepository(store *docstore.Client, logg *logger.Logger) *StoreRepository {
	return &StoreRepository{store: store, logg: logg}
}

// Create writes the order document keyed by its id. A retry with the
// same id overwrites the identical document instead of duplicating it.
func (r *StoreRepository) Create(ctx context.Context, userID string, order models.Order) error {
	if err := validateKeys(userID, order.ID); err != nil {
		return err
	}

	_, err := r.store.Orders(userID).Doc(order.ID).Set(ctx, docstore.EncodeOrder(order))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "create order")
	}
	return nil
}

// FetchForUser returns the user's order history, newest first.
func (r *StoreRepository) FetchForUser(ctx context.Context, userID string) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	iter := r.store.Orders(userID).OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var history []models.Order
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "iterate orders")
		}
		history = append(history, docstore.DecodeOrder(snap.Ref.ID, snap.Data()))
	}
	return history, nil
}

// UpdateStatus mutates only the status field of an existing order.
func (r *StoreRepository) UpdateStatus(ctx context.Context, userID, orderID string, newStatus enums.OrderStatus) error {
	if err := validateKeys(userID, orderID); err != nil {
		return err
	}
	if !newStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", newStatus))
	}

	_, err := r.store.Orders(userID).Doc(orderID).Update(ctx, []firestore.Update{
		{Path: "status", Value: newStatus.String()},
	})
	if status.Code(err) == codes.NotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "update order status")
	}
	return nil
}

func validateKeys(userID, orderID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return nil
}
