package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/models"
)

func priceOf(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	price, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return price
}

type stubRepository struct {
	mu      sync.Mutex
	saved   [][]models.CartLine
	cleared []string
	loaded  []models.CartLine
	saveErr error
	loadErr error

	saveGate chan struct{}
}

func (s *stubRepository) Save(_ context.Context, _ string, lines []models.CartLine) error {
	if s.saveGate != nil {
		<-s.saveGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, models.CloneLines(lines))
	return s.saveErr
}

func (s *stubRepository) Load(context.Context, string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneLines(s.loaded), s.loadErr
}

func (s *stubRepository) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, userID)
	return s.saveErr
}

func (s *stubRepository) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *stubRepository) lastSaved() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("persistence did not complete")
		return nil
	}
}

func newUserEngine(t *testing.T, repo *stubRepository, sink telemetry.Sink) *Engine {
	t.Helper()
	engine := NewEngine(repo, sink, nil)
	require.NoError(t, await(t, engine.SetUser(context.Background(), "user-1")))
	return engine
}

func TestAddToCartTwiceMergesIntoOneLine(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)
	product := models.Product{ID: 1, Title: "Jacket"}

	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))
	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))

	lines := engine.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, engine.ItemCount())

	saved := repo.lastSaved()
	require.Len(t, saved, 1)
	assert.Equal(t, 2, saved[0].Quantity)
}

func TestRemoveFromCartDecrementsThenRemoves(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)
	product := models.Product{ID: 1}

	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))
	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))

	require.NoError(t, await(t, engine.RemoveFromCart(context.Background(), product)))
	lines := engine.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	require.NoError(t, await(t, engine.RemoveFromCart(context.Background(), product)))
	assert.Empty(t, engine.Lines())
}

func TestRemoveFromCartMissingProductIsNoOp(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)

	require.NoError(t, await(t, engine.RemoveFromCart(context.Background(), models.Product{ID: 9})))

	assert.Empty(t, engine.Lines())
	assert.Equal(t, 0, repo.saveCount())
}

func TestMutationVisibleBeforePersistenceCompletes(t *testing.T) {
	repo := &stubRepository{saveGate: make(chan struct{})}
	engine := newUserEngine(t, repo, nil)

	done := engine.AddToCart(context.Background(), models.Product{ID: 1})

	assert.Equal(t, 1, engine.ItemCount())
	assert.Equal(t, 0, repo.saveCount())

	close(repo.saveGate)
	require.NoError(t, await(t, done))
	assert.Equal(t, 1, repo.saveCount())
}

func TestSaveFailureLeavesMemoryIntact(t *testing.T) {
	repo := &stubRepository{saveErr: errors.New("connection reset")}
	engine := newUserEngine(t, repo, nil)

	err := await(t, engine.AddToCart(context.Background(), models.Product{ID: 1}))
	require.Error(t, err)

	lines := engine.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAnonymousUserSkipsPersistence(t *testing.T) {
	repo := &stubRepository{}
	engine := NewEngine(repo, nil, nil)

	require.NoError(t, await(t, engine.AddToCart(context.Background(), models.Product{ID: 1})))

	assert.Equal(t, 1, engine.ItemCount())
	assert.Equal(t, 0, repo.saveCount())
}

func TestSetUserSeedsFromRepository(t *testing.T) {
	repo := &stubRepository{loaded: []models.CartLine{
		{Product: models.Product{ID: 4, Title: "Drive"}, Quantity: 3},
	}}
	engine := NewEngine(repo, nil, nil)

	require.NoError(t, await(t, engine.SetUser(context.Background(), "user-1")))

	assert.Equal(t, 3, engine.ItemCount())
}

func TestSetUserLoadFailureLeavesCartEmpty(t *testing.T) {
	repo := &stubRepository{loadErr: errors.New("unavailable")}
	engine := NewEngine(repo, nil, nil)

	err := await(t, engine.SetUser(context.Background(), "user-1"))
	require.Error(t, err)
	assert.Empty(t, engine.Lines())
}

func TestClearCartPersistsEmptyState(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)

	require.NoError(t, await(t, engine.AddToCart(context.Background(), models.Product{ID: 1})))
	require.NoError(t, await(t, engine.ClearCart(context.Background())))

	assert.Empty(t, engine.Lines())
	assert.Equal(t, []string{"user-1"}, repo.cleared)
}

func TestAddToCartEmitsTelemetry(t *testing.T) {
	repo := &stubRepository{}
	sink := &telemetry.CaptureSink{}
	engine := newUserEngine(t, repo, sink)
	product := models.Product{ID: 7, Title: "Micropave"}

	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))
	require.NoError(t, await(t, engine.AddToCart(context.Background(), product)))

	events := sink.Named(telemetry.EventAddToCart)
	require.Len(t, events, 2)
	assert.Equal(t, 7, events[0].Params[telemetry.ParamItemID])
	assert.Equal(t, 2, events[1].Params[telemetry.ParamQuantity])
}

func TestTotalIsDerivedFromLines(t *testing.T) {
	engine := NewEngine(&stubRepository{}, nil, nil)
	a := models.Product{ID: 1, Price: priceOf(t, "10.50")}
	b := models.Product{ID: 2, Price: priceOf(t, "3.25")}

	require.NoError(t, await(t, engine.AddToCart(context.Background(), a)))
	require.NoError(t, await(t, engine.AddToCart(context.Background(), a)))
	require.NoError(t, await(t, engine.AddToCart(context.Background(), b)))

	assert.Equal(t, "24.25", engine.Total().String())
	assert.Equal(t, 3, engine.ItemCount())
}
