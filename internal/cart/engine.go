package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// Engine owns the in-memory cart for the active user. Mutations commit
// to memory synchronously and are immediately visible to readers, then a
// detached save is dispatched to the repository. Callers that care about
// persistence observe its outcome on the returned channel; nobody is
// required to.
//
// Mutating intents are expected to arrive serialized from one session;
// the internal mutex only guarantees memory safety, not intent ordering.
type Engine struct {
	repo Repository
	sink telemetry.Sink
	logg *logger.Logger

	mu     sync.Mutex
	userID string
	lines  []models.CartLine
}

func NewEngine(repo Repository, sink telemetry.Sink, logg *logger.Logger) *Engine {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Engine{repo: repo, sink: sink, logg: logg}
}

// SetUser switches the engine to a new user, wipes the in-memory cart
// and loads the persisted one in the background. The returned channel
// reports the load's outcome; a load failure is logged and leaves the
// cart empty rather than surfacing to the user. An empty user id means
// anonymous: the cart stays in memory only.
func (e *Engine) SetUser(ctx context.Context, userID string) <-chan error {
	e.mu.Lock()
	e.userID = userID
	e.lines = nil
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

		lines, err := e.repo.Load(loadCtx, userID)
		if err != nil {
			if e.logg != nil {
				e.logg.Error(e.logg.WithUserID(loadCtx, userID), "load cart", err)
			}
			done <- err
			return
		}

		e.mu.Lock()
		// Last load wins, but only for the user it was started for.
		if e.userID == userID {
			e.lines = lines
		}
		e.mu.Unlock()
		done <- nil
	}()
	return done
}

// AddToCart increments the line for the product, appending a new line at
// quantity 1 when none exists yet.
func (e *Engine) AddToCart(ctx context.Context, product models.Product) <-chan error {
	e.mu.Lock()
	quantity := 1
	found := false
	for i := range e.lines {
		if e.lines[i].Product.Same(product) {
			e.lines[i].Quantity++
			quantity = e.lines[i].Quantity
			found = true
			break
		}
	}
	if !found {
		e.lines = append(e.lines, models.CartLine{Product: product, Quantity: 1})
	}
	userID := e.userID
	snapshot := models.CloneLines(e.lines)
	e.mu.Unlock()

	e.sink.Publish(ctx, telemetry.AddToCart(product, quantity))

	return e.persist(ctx, userID, snapshot)
}

// RemoveFromCart decrements the line for the product, dropping it when
// the quantity reaches 0. Removing a product not in the cart is a no-op
// and dispatches no save.
func (e *Engine) RemoveFromCart(ctx context.Context, product models.Product) <-chan error {
	e.mu.Lock()
	changed := false
	for i := range e.lines {
		if !e.lines[i].Product.Same(product) {
			continue
		}
		if e.lines[i].Quantity > 1 {
			e.lines[i].Quantity--
		} else {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
		}
		changed = true
		break
	}
	userID := e.userID
	snapshot := models.CloneLines(e.lines)
	e.mu.Unlock()

	if !changed {
		return completed()
	}
	return e.persist(ctx, userID, snapshot)
}

// ClearCart empties the cart and persists the empty state.
func (e *Engine) ClearCart(ctx context.Context) <-chan error {
	e.mu.Lock()
	e.lines = nil
	userID := e.userID
	e.mu.Unlock()

	done := make(chan error, 1)
	if userID == "" || e.repo == nil {
		done <- nil
		close(done)
		return done
	}

	saveCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		err := e.repo.Clear(saveCtx, userID)
		if err != nil && e.logg != nil {
			e.logg.Error(e.logg.WithUserID(saveCtx, userID), "clear cart", err)
		}
		done <- err
	}()
	return done
}

// Lines returns a value copy of the current cart.
func (e *Engine) Lines() []models.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.CloneLines(e.lines)
}

// ItemCount is the sum of all line quantities.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.ItemCount(e.lines)
}

// Total is the sum of price times quantity across all lines.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.Total(e.lines)
}

// UserID returns the active user id, empty for anonymous.
func (e *Engine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

func (e *Engine) persist(ctx context.Context, userID string, lines []models.CartLine) <-chan error {
	done := make(chan error, 1)
	if userID == "" || e.repo == nil {
		done <- nil
		close(done)
		return done
	}

	saveCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		err := e.repo.Save(saveCtx, userID, lines)
		if err != nil && e.logg != nil {
			e.logg.Error(e.logg.WithUserID(saveCtx, userID), "save cart", err)
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
