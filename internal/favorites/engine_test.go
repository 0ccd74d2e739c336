package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/models"
)

type stubRepository struct {
	mu      sync.Mutex
	saved   [][]models.Product
	loaded  []models.Product
	saveErr error
	loadErr error

	saveGate chan struct{}
}

func (s *stubRepository) Save(_ context.Context, _ string, products []models.Product) error {
	if s.saveGate != nil {
		<-s.saveGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]models.Product, len(products))
	copy(snapshot, products)
	s.saved = append(s.saved, snapshot)
	return s.saveErr
}

func (s *stubRepository) Load(context.Context, string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.loadErr
}

func (s *stubRepository) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
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

func TestIsFavoriteTracksMembershipImmediately(t *testing.T) {
	repo := &stubRepository{saveGate: make(chan struct{})}
	engine := newUserEngine(t, repo, nil)
	product := models.Product{ID: 1, Title: "Jacket"}

	addDone := engine.AddToFavorites(context.Background(), product)
	assert.True(t, engine.IsFavorite(product))
	assert.Equal(t, 0, repo.saveCount())

	close(repo.saveGate)
	require.NoError(t, await(t, addDone))

	require.NoError(t, await(t, engine.RemoveFromFavorites(context.Background(), product)))
	assert.False(t, engine.IsFavorite(product))
}

func TestAddToFavoritesDeduplicatesByID(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)
	product := models.Product{ID: 1}

	require.NoError(t, await(t, engine.AddToFavorites(context.Background(), product)))
	require.NoError(t, await(t, engine.AddToFavorites(context.Background(), product)))

	assert.Len(t, engine.Products(), 1)
	assert.Equal(t, 1, repo.saveCount())
}

func TestRemoveFromFavoritesIsIdempotent(t *testing.T) {
	repo := &stubRepository{}
	engine := newUserEngine(t, repo, nil)

	require.NoError(t, await(t, engine.RemoveFromFavorites(context.Background(), models.Product{ID: 9})))

	assert.Empty(t, engine.Products())
	assert.Equal(t, 1, repo.saveCount())
}

func TestSaveFailureLeavesMemoryIntact(t *testing.T) {
	repo := &stubRepository{saveErr: errors.New("connection reset")}
	engine := newUserEngine(t, repo, nil)
	product := models.Product{ID: 1}

	err := await(t, engine.AddToFavorites(context.Background(), product))
	require.Error(t, err)
	assert.True(t, engine.IsFavorite(product))
}

func TestSetUserSeedsFromRepository(t *testing.T) {
	repo := &stubRepository{loaded: []models.Product{{ID: 3, Title: "Drive"}}}
	engine := NewEngine(repo, nil, nil)

	require.NoError(t, await(t, engine.SetUser(context.Background(), "user-1")))

	assert.True(t, engine.IsFavorite(models.Product{ID: 3}))
}

func TestSetUserLoadFailureLeavesSetEmpty(t *testing.T) {
	repo := &stubRepository{loadErr: errors.New("unavailable")}
	engine := NewEngine(repo, nil, nil)

	err := await(t, engine.SetUser(context.Background(), "user-1"))
	require.Error(t, err)
	assert.Empty(t, engine.Products())
}

func TestAnonymousUserSkipsPersistence(t *testing.T) {
	repo := &stubRepository{}
	engine := NewEngine(repo, nil, nil)
	product := models.Product{ID: 1}

	require.NoError(t, await(t, engine.AddToFavorites(context.Background(), product)))

	assert.True(t, engine.IsFavorite(product))
	assert.Equal(t, 0, repo.saveCount())
}

func TestAddToFavoritesEmitsTelemetry(t *testing.T) {
	repo := &stubRepository{}
	sink := &telemetry.CaptureSink{}
	engine := newUserEngine(t, repo, sink)

	require.NoError(t, await(t, engine.AddToFavorites(context.Background(), models.Product{ID: 5, Title: "Ring"})))

	events := sink.Named(telemetry.EventAddToWishlist)
	require.Len(t, events, 1)
	assert.Equal(t, "Ring", events[0].Params[telemetry.ParamItemName])
}
