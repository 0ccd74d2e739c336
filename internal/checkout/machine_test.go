package checkout

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
	"github.com/phermann/shopcore/pkg/enums"
	"github.com/phermann/shopcore/pkg/models"
)

type stubCart struct {
	mu      sync.Mutex
	lines   []models.CartLine
	cleared int
}

func (s *stubCart) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneLines(s.lines)
}

func (s *stubCart) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Total(s.lines)
}

func (s *stubCart) ClearCart(context.Context) <-chan error {
	s.mu.Lock()
	s.lines = nil
	s.cleared++
	s.mu.Unlock()

	done := make(chan error, 1)
	done <- nil
	close(done)
	return done
}

type stubOrderRepo struct {
	mu        sync.Mutex
	stored    map[string]models.Order
	history   []models.Order
	createErr error
	fetchErr  error
}

func (s *stubOrderRepo) Create(_ context.Context, _ string, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.stored == nil {
		s.stored = make(map[string]models.Order)
	}
	s.stored[order.ID] = order
	return nil
}

func (s *stubOrderRepo) FetchForUser(context.Context, string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history, s.fetchErr
}

func (s *stubOrderRepo) UpdateStatus(context.Context, string, string, enums.OrderStatus) error {
	return nil
}

func (s *stubOrderRepo) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func awaitLoad(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("background load did not complete")
		return nil
	}
}

func twoProductCart() *stubCart {
	return &stubCart{lines: []models.CartLine{
		{Product: models.Product{ID: 1, Title: "Jacket", Price: decimal.RequireFromString("55.99")}, Quantity: 2},
		{Product: models.Product{ID: 2, Title: "Drive", Price: decimal.RequireFromString("64")}, Quantity: 1},
	}}
}

func TestSubmitRoundTrip(t *testing.T) {
	cartStub := twoProductCart()
	repo := &stubOrderRepo{}
	sink := &telemetry.CaptureSink{}
	machine := NewMachine(cartStub, repo, sink, nil)
	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))

	wantItems := cartStub.Lines()
	wantTotal := cartStub.Total()
	machine.SetForm(validForm())

	order, err := machine.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, machine.State())
	assert.Empty(t, machine.Message())
	assert.Equal(t, wantItems, order.Items)
	assert.Equal(t, wantTotal.String(), order.Total.String())
	assert.Equal(t, enums.OrderStatusNew, order.Status)
	assert.Equal(t, "4242", order.Shipping.CardLast4)

	require.Len(t, machine.History(), 1)
	assert.Equal(t, order.ID, machine.History()[0].ID)
	assert.Empty(t, cartStub.Lines())
	assert.Equal(t, Form{}, machine.Form())

	purchases := sink.Named(telemetry.EventPurchase)
	require.Len(t, purchases, 1)
	assert.Equal(t, order.ID, purchases[0].Params[telemetry.ParamTransactionID])
	assert.Equal(t, telemetry.DefaultCurrency, purchases[0].Params[telemetry.ParamCurrency])
}

func TestSubmitValidationFailureReturnsToEditing(t *testing.T) {
	cartStub := twoProductCart()
	repo := &stubOrderRepo{}
	machine := NewMachine(cartStub, repo, nil, nil)
	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))

	form := validForm()
	form.CardNumber = "4242 4242 4242"
	machine.SetForm(form)

	_, err := machine.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateEditing, machine.State())
	assert.Equal(t, MsgCardLength, machine.Message())
	assert.Equal(t, form, machine.Form())
	assert.Len(t, cartStub.Lines(), 2)
	assert.Equal(t, 0, repo.storedCount())
}

func TestSubmitPersistenceFailureKeepsCart(t *testing.T) {
	cartStub := twoProductCart()
	repo := &stubOrderRepo{createErr: errors.New("deadline exceeded")}
	machine := NewMachine(cartStub, repo, nil, nil)
	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))
	machine.SetForm(validForm())

	_, err := machine.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateEditing, machine.State())
	assert.Equal(t, MsgSubmitFailed, machine.Message())
	assert.Len(t, cartStub.Lines(), 2)
	assert.Equal(t, 0, cartStub.cleared)
	assert.Empty(t, machine.History())
}

func TestSubmitRetryAfterFailureStoresExactlyOneOrder(t *testing.T) {
	cartStub := twoProductCart()
	repo := &stubOrderRepo{createErr: errors.New("connection reset")}
	machine := NewMachine(cartStub, repo, nil, nil)
	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))
	machine.newID = func() string { return "order-1" }
	machine.SetForm(validForm())

	_, err := machine.Submit(context.Background())
	require.Error(t, err)

	repo.mu.Lock()
	repo.createErr = nil
	repo.mu.Unlock()

	machine.SetForm(validForm())
	order, err := machine.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 1, repo.storedCount())
}

func TestSetUserSeedsHistory(t *testing.T) {
	repo := &stubOrderRepo{history: []models.Order{{ID: "old-1"}}}
	machine := NewMachine(&stubCart{}, repo, nil, nil)

	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))

	require.Len(t, machine.History(), 1)
	assert.Equal(t, "old-1", machine.History()[0].ID)
}

func TestSetUserHistoryLoadFailureLeavesHistoryEmpty(t *testing.T) {
	repo := &stubOrderRepo{fetchErr: errors.New("unavailable")}
	machine := NewMachine(&stubCart{}, repo, nil, nil)

	err := awaitLoad(t, machine.SetUser(context.Background(), "user-1"))
	require.Error(t, err)
	assert.Empty(t, machine.History())
	assert.Equal(t, StateEditing, machine.State())
}

func TestEditReturnsConfirmedFlowToEditing(t *testing.T) {
	cartStub := twoProductCart()
	machine := NewMachine(cartStub, &stubOrderRepo{}, nil, nil)
	require.NoError(t, awaitLoad(t, machine.SetUser(context.Background(), "user-1")))
	machine.SetForm(validForm())

	_, err := machine.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, machine.State())

	machine.Edit()
	assert.Equal(t, StateEditing, machine.State())
}
