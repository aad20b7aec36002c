// Package checkout implements the checkout state machine.
//
// Steps are linear: cart -> checkout -> success, with the user-triggered
// backward edge checkout -> cart as the only cycle. Submission is gated
// on continuous form validity and an in-flight flag, resolves after a
// simulated latency, and applies its three effects (create order, clear
// cart, advance step) under one lock so external readers observe them
// atomically.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/clock"
	"github.com/roach88/merch/internal/orders"
)

// Step is the machine's current view.
type Step string

const (
	StepCart     Step = "cart"
	StepCheckout Step = "checkout"
	StepSuccess  Step = "success"
)

// DefaultSubmitDelay is the simulated payment latency.
const DefaultSubmitDelay = 2 * time.Second

// Guard rejections. These are expected control-flow outcomes, not faults;
// callers typically disable the triggering control instead of reporting.
var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrWrongStep      = errors.New("checkout: not available in this step")
	ErrFormInvalid    = errors.New("checkout: form is not valid")
	ErrSubmitInFlight = errors.New("checkout: submission already in flight")
)

// Machine coordinates the cart view, the validated form, the simulated
// submission, and the success view.
type Machine struct {
	mu sync.Mutex

	cart   *cart.Store
	orders *orders.Store
	idgen  orders.IDGenerator
	clk    clock.Clock
	logger *slog.Logger
	delay  time.Duration

	step      Step
	form      Form
	problems  map[string]string
	inFlight  bool
	lastOrder *orders.Order

	updates chan struct{}
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the system clock (tests use a manual clock).
func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clk = c }
}

// WithSubmitDelay overrides the simulated submission latency.
func WithSubmitDelay(d time.Duration) Option {
	return func(m *Machine) { m.delay = d }
}

// WithIDGenerator replaces the order id generator.
func WithIDGenerator(g orders.IDGenerator) Option {
	return func(m *Machine) { m.idgen = g }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New creates a machine in step cart, with an empty, invalid form.
func New(cartStore *cart.Store, orderStore *orders.Store, opts ...Option) *Machine {
	m := &Machine{
		cart:    cartStore,
		orders:  orderStore,
		idgen:   orders.NewTimestampGenerator(),
		clk:     clock.NewSystem(),
		logger:  slog.Default(),
		delay:   DefaultSubmitDelay,
		step:    StepCart,
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.problems = Validate(m.form)
	return m
}

// Step returns the current step.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// InFlight reports whether a submission is currently resolving.
func (m *Machine) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Updates returns a coalescing signal channel for step or validity
// changes.
func (m *Machine) Updates() <-chan struct{} {
	return m.updates
}

// Begin moves cart -> checkout. Requires a non-empty cart; an empty cart
// in step cart is a terminal view, not a transition.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != StepCart {
		return ErrWrongStep
	}
	if m.cart.Len() == 0 {
		return ErrEmptyCart
	}
	m.step = StepCheckout
	m.notify()
	return nil
}

// Back moves checkout -> cart, the machine's only backward edge.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != StepCheckout || m.inFlight {
		return ErrWrongStep
	}
	m.step = StepCart
	m.notify()
	return nil
}

// SetField updates one form field and re-evaluates validity immediately,
// mirroring validate-on-change. Unknown field names are ignored.
func (m *Machine) SetField(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case FieldName:
		m.form.Name = value
	case FieldEmail:
		m.form.Email = value
	case FieldAddress:
		m.form.Address = value
	case FieldCity:
		m.form.City = value
	case FieldZip:
		m.form.Zip = value
	case FieldCard:
		m.form.Card = value
	case FieldExp:
		m.form.Exp = value
	case FieldCVC:
		m.form.CVC = value
	default:
		return
	}
	m.problems = Validate(m.form)
	m.notify()
}

// SetForm replaces the whole form and re-evaluates validity.
func (m *Machine) SetForm(f Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = f
	m.problems = Validate(m.form)
	m.notify()
}

// Valid reports the continuously tracked form-validity flag.
func (m *Machine) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.problems) == 0
}

// FieldErrors returns the current per-field validation messages.
func (m *Machine) FieldErrors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.problems))
	for k, v := range m.problems {
		out[k] = v
	}
	return out
}

// LastOrder returns the order created by the most recent successful
// submission, if any.
func (m *Machine) LastOrder() (orders.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastOrder == nil {
		return orders.Order{}, false
	}
	return *m.lastOrder, true
}

// Submit starts the simulated submission. Rejected unless the machine is
// in step checkout with a valid form and no submission in flight;
// re-entrant submits are dropped with ErrSubmitInFlight.
//
// The submission resolves after the configured delay. On resolution the
// machine creates an order from the current cart contents and validated
// shipping fields, appends it to the order history, clears the cart, and
// moves to success - all under one lock, so no reader can observe the
// order without the cleared cart or vice versa.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()

	if m.step != StepCheckout {
		m.mu.Unlock()
		return ErrWrongStep
	}
	if m.inFlight {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	if len(m.problems) != 0 {
		m.mu.Unlock()
		return ErrFormInvalid
	}

	m.inFlight = true
	m.mu.Unlock()
	m.notify()

	m.clk.AfterFunc(m.delay, func() { m.resolve(ctx) })
	return nil
}

// resolve applies the submission's effects atomically.
func (m *Machine) resolve(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()
	order := orders.Order{
		ID:     m.idgen.Generate(now),
		Date:   now,
		Items:  m.cart.Lines(),
		Total:  m.cart.TotalPrice(),
		Status: orders.StatusPlaced,
		ShippingInfo: orders.ShippingInfo{
			Name:    m.form.Name,
			Email:   m.form.Email,
			Address: m.form.Address,
			City:    m.form.City,
			Zip:     m.form.Zip,
		},
	}

	if err := m.orders.Add(ctx, order); err != nil {
		// Persistence failed before any effect became visible; stay in
		// checkout so the user can retry.
		m.logger.Error("order persist failed, staying in checkout", "error", err)
		m.inFlight = false
		m.notify()
		return
	}
	if err := m.cart.Clear(ctx); err != nil {
		m.logger.Error("cart clear failed after order persist", "order_id", order.ID, "error", err)
	}

	m.lastOrder = &order
	m.inFlight = false
	m.step = StepSuccess
	m.notify()

	m.logger.Info("order placed", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
}

// notify signals subscribers without blocking. Safe to call with or
// without m.mu held; the channel send never touches machine state.
func (m *Machine) notify() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}
