package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phermann/shopcore/internal/orders"
	"github.com/phermann/shopcore/internal/telemetry"
	"github.com/phermann/shopcore/pkg/enums"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// MsgSubmitFailed is shown when order persistence fails.
const MsgSubmitFailed = "Fehler beim Speichern der Bestellung"

// State of the checkout flow.
type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
)

// Cart is the slice of the cart engine the checkout flow needs.
type Cart interface {
	Lines() []models.CartLine
	Total() decimal.Decimal
	ClearCart(ctx context.Context) <-chan error
}

// Machine drives the checkout flow: Editing, Validating, Submitting,
// Confirmed. Validation failures fall back to Editing keeping the raw
// field values. Order creation is the one persistence call that is
// awaited, because Confirmed depends on its outcome; a failed submit
// falls back to Editing with the cart untouched so the user can retry.
type Machine struct {
	cart   Cart
	orders orders.Repository
	sink   telemetry.Sink
	logg   *logger.Logger

	newID func() string
	now   func() time.Time

	mu      sync.Mutex
	state   State
	form    Form
	message string
	userID  string
	history []models.Order
}

func NewMachine(cartEngine Cart, orderRepo orders.Repository, sink telemetry.Sink, logg *logger.Logger) *Machine {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Machine{
		cart:   cartEngine,
		orders: orderRepo,
		sink:   sink,
		logg:   logg,
		newID:  uuid.NewString,
		now:    time.Now,
		state:  StateEditing,
	}
}

// SetUser switches the active user, resets the flow and loads the order
// history in the background. A failed history load is logged and leaves
// the in-memory history empty.
func (m *Machine) SetUser(ctx context.Context, userID string) <-chan error {
	m.mu.Lock()
	m.userID = userID
	m.history = nil
	m.form.Reset()
	m.message = ""
	m.state = StateEditing
	m.mu.Unlock()

	done := make(chan error, 1)
	if userID == "" || m.orders == nil {
		done <- nil
		close(done)
		return done
	}

	loadCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)

		history, err := m.orders.FetchForUser(loadCtx, userID)
		if err != nil {
			if m.logg != nil {
				m.logg.Error(m.logg.WithUserID(loadCtx, userID), "load order history", err)
			}
			done <- err
			return
		}

		m.mu.Lock()
		if m.userID == userID {
			m.history = history
		}
		m.mu.Unlock()
		done <- nil
	}()
	return done
}

// State returns the current flow state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Message returns the current user-facing error message, empty when the
// last transition succeeded.
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Form returns a copy of the current field values.
func (m *Machine) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// SetForm replaces the field values, only valid while editing.
func (m *Machine) SetForm(form Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateEditing {
		m.form = form
	}
}

// History returns a copy of the in-memory order history.
func (m *Machine) History() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]models.Order, len(m.history))
	copy(history, m.history)
	return history
}

// Edit returns a confirmed flow to Editing for the next order.
func (m *Machine) Edit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateConfirmed {
		m.state = StateEditing
	}
}

// Submit validates the form, builds the order from the live cart and
// persists it. On success the order joins the history, the cart is
// cleared and the form reset. On any failure the flow returns to
// Editing with a single user-facing message and the cart unchanged.
func (m *Machine) Submit(ctx context.Context) (models.Order, error) {
	m.mu.Lock()
	if m.state != StateEditing {
		m.mu.Unlock()
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "checkout already in progress")
	}
	m.state = StateValidating
	m.message = ""
	form := m.form
	userID := m.userID
	m.mu.Unlock()

	if err := Validate(form); err != nil {
		m.fail(messageOf(err))
		return models.Order{}, err
	}

	order := models.Order{
		ID:       m.newID(),
		Items:    m.cart.Lines(),
		Date:     m.now().UTC(),
		Total:    m.cart.Total(),
		Status:   enums.OrderStatusNew,
		Shipping: form.ShippingDetails(),
	}

	m.mu.Lock()
	m.state = StateSubmitting
	m.mu.Unlock()

	if err := m.orders.Create(ctx, userID, order); err != nil {
		if m.logg != nil {
			m.logg.Error(m.logg.WithOrderID(ctx, order.ID), "create order", err)
		}
		m.fail(MsgSubmitFailed)
		return models.Order{}, err
	}

	m.mu.Lock()
	m.history = append(m.history, order)
	m.form.Reset()
	m.state = StateConfirmed
	m.mu.Unlock()

	m.cart.ClearCart(ctx)
	m.sink.Publish(ctx, telemetry.Purchase(order.ID, order.Items, order.Total, telemetry.DefaultCurrency))

	return order, nil
}

func (m *Machine) fail(message string) {
	m.mu.Lock()
	m.message = message
	m.state = StateEditing
	m.mu.Unlock()
}

func messageOf(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return MsgSubmitFailed
}
