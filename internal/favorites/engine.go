package favorites

import (
	"context"
	"sync"

	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// Engine owns the in-memory favorites set for the active user, unique by
// product id. It follows the same optimistic discipline as the cart
// engine: memory first, then a detached save whose outcome is exposed on
// the returned channel.
type Engine struct {
	repo Repository
	sink telemetry.Sink
	logg *logger.Logger

	mu       sync.Mutex
	userID   string
	products []models.Product
}

func NewEngine(repo Repository, sink telemetry.Sink, logg *logger.Logger) *Engine {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Engine{repo: repo, sink: sink, logg: logg}
}

// SetUser switches the active user and reloads the persisted favorites
// in the background. A load failure is logged and leaves the set empty.
func (e *Engine) SetUser(ctx context.Context, userID string) <-chan error {
	e.mu.Lock()
	e.userID = userID
	e.products = nil
	e.mu.Unlock()

	done := make(chan error, 1)
	if userID == "" || e.repo == nil {
		done <- nil
		close(done)
		return done
	}

	loadCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)

		products, err := e.repo.Load(loadCtx, userID)
		if err != nil {
			if e.logg != nil {
				e.logg.Error(e.logg.WithUserID(loadCtx, userID), "load favorites", err)
			}
			done <- err
			return
		}

		e.mu.Lock()
		if e.userID == userID {
			e.products = products
		}
		e.mu.Unlock()
		done <- nil
	}()
	return done
}

// AddToFavorites appends the product unless it is already present.
// Adding a duplicate is a no-op and dispatches no save.
func (e *Engine) AddToFavorites(ctx context.Context, product models.Product) <-chan error {
	e.mu.Lock()
	for _, p := range e.products {
		if p.Same(product) {
			e.mu.Unlock()
			return completed()
		}
	}
	e.products = append(e.products, product)
	userID := e.userID
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.sink.Publish(ctx, telemetry.AddToWishlist(product))

	return e.persist(ctx, userID, snapshot)
}

// RemoveFromFavorites removes the product by id. The save is dispatched
// regardless of membership, keeping the operation idempotent.
func (e *Engine) RemoveFromFavorites(ctx context.Context, product models.Product) <-chan error {
	e.mu.Lock()
	for i, p := range e.products {
		if p.Same(product) {
			e.products = append(e.products[:i], e.products[i+1:]...)
			break
		}
	}
	userID := e.userID
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	return e.persist(ctx, userID, snapshot)
}

// IsFavorite reports membership by product id.
func (e *Engine) IsFavorite(product models.Product) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.products {
		if p.Same(product) {
			return true
		}
	}
	return false
}

// Products returns a value copy of the current favorites.
func (e *Engine) Products() []models.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() []models.Product {
	if len(e.products) == 0 {
		return nil
	}
	snapshot := make([]models.Product, len(e.products))
	copy(snapshot, e.products)
	return snapshot
}

func (e *Engine) persist(ctx context.Context, userID string, products []models.Product) <-chan error {
	done := make(chan error, 1)
	if userID == "" || e.repo == nil {
		done <- nil
		close(done)
		return done
	}

	saveCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		err := e.repo.Save(saveCtx, userID, products)
		if err != nil && e.logg != nil {
			e.logg.Error(e.logg.WithUserID(saveCtx, userID), "save favorites", err)
		}
		done <- err
	}()
	return done
}

func completed() <-chan error {
	done := make(chan error, 1)
	done <- nil
	close(done)
	return done
}
