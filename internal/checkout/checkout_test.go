package checkout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/catalog"
	"github.com/roach88/merch/internal/orders"
	"github.com/roach88/merch/internal/testutil"
)

type memCartPersister struct{ lines []cart.Line }

func (m *memCartPersister) LoadCart(ctx context.Context) ([]cart.Line, error) { return m.lines, nil }
func (m *memCartPersister) SaveCart(ctx context.Context, lines []cart.Line) error {
	m.lines = append([]cart.Line(nil), lines...)
	return nil
}

type memOrderPersister struct{ orders []orders.Order }

func (m *memOrderPersister) LoadOrders(ctx context.Context) ([]orders.Order, error) {
	return m.orders, nil
}
func (m *memOrderPersister) SaveOrders(ctx context.Context, history []orders.Order) error {
	m.orders = append([]orders.Order(nil), history...)
	return nil
}

type fixture struct {
	cart    *cart.Store
	orders  *orders.Store
	clock   *testutil.ManualClock
	machine *Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cartStore, err := cart.New(ctx, &memCartPersister{})
	require.NoError(t, err)
	orderStore, err := orders.New(ctx, &memOrderPersister{})
	require.NoError(t, err)

	clk := testutil.NewManualClock()
	m := New(cartStore, orderStore,
		WithClock(clk),
		WithIDGenerator(orders.NewFixedGenerator("ORD-TEST-1", "ORD-TEST-2")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{cart: cartStore, orders: orderStore, clock: clk, machine: m}
}

func (f *fixture) addLine(t *testing.T, price float64) {
	t.Helper()
	p := catalog.Enrich(catalog.Product{ID: 1, Title: "Phone", Price: price, Category: "smartphones"})
	require.NoError(t, f.cart.Add(context.Background(), p, catalog.Variant{}, price))
}

func TestBegin_RequiresNonEmptyCart(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.machine.Begin(), ErrEmptyCart)
	assert.Equal(t, StepCart, f.machine.Step())

	f.addLine(t, 100)
	require.NoError(t, f.machine.Begin())
	assert.Equal(t, StepCheckout, f.machine.Step())
}

func TestBegin_OnlyFromCartStep(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	require.NoError(t, f.machine.Begin())

	assert.ErrorIs(t, f.machine.Begin(), ErrWrongStep)
}

func TestBack_IsTheOnlyBackwardEdge(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)

	assert.ErrorIs(t, f.machine.Back(), ErrWrongStep, "no back from cart")

	require.NoError(t, f.machine.Begin())
	require.NoError(t, f.machine.Back())
	assert.Equal(t, StepCart, f.machine.Step())
}

func TestValidity_TrackedOnEveryFieldChange(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	require.NoError(t, f.machine.Begin())

	assert.False(t, f.machine.Valid(), "empty form is invalid")

	valid := validForm()
	f.machine.SetField(FieldName, valid.Name)
	f.machine.SetField(FieldEmail, valid.Email)
	f.machine.SetField(FieldAddress, valid.Address)
	f.machine.SetField(FieldCity, valid.City)
	f.machine.SetField(FieldZip, valid.Zip)
	f.machine.SetField(FieldCard, valid.Card)
	f.machine.SetField(FieldExp, valid.Exp)
	assert.False(t, f.machine.Valid(), "still missing cvc")

	f.machine.SetField(FieldCVC, valid.CVC)
	assert.True(t, f.machine.Valid(), "validity flips only once all fields pass")

	f.machine.SetField(FieldEmail, "broken")
	assert.False(t, f.machine.Valid())
	assert.Contains(t, f.machine.FieldErrors(), FieldEmail)
}

func TestSubmit_RejectedWhileInvalid(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	require.NoError(t, f.machine.Begin())

	assert.ErrorIs(t, f.machine.Submit(context.Background()), ErrFormInvalid)
}

func TestSubmit_RejectedOutsideCheckout(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	f.machine.SetForm(validForm())

	assert.ErrorIs(t, f.machine.Submit(context.Background()), ErrWrongStep)
}

func TestSubmit_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100) // one line, price 100, qty 1
	ctx := context.Background()

	require.NoError(t, f.machine.Begin())
	f.machine.SetForm(validForm())
	require.True(t, f.machine.Valid())

	require.NoError(t, f.machine.Submit(ctx))
	assert.True(t, f.machine.InFlight())
	assert.Equal(t, StepCheckout, f.machine.Step(), "nothing resolves before the delay")
	assert.Equal(t, 0, f.orders.Len())

	f.clock.Advance(DefaultSubmitDelay)

	assert.Equal(t, StepSuccess, f.machine.Step())
	assert.False(t, f.machine.InFlight())
	assert.Equal(t, 0, f.cart.Len(), "cart cleared atomically with order creation")
	require.Equal(t, 1, f.orders.Len())

	placed := f.orders.All()[0]
	assert.Equal(t, "ORD-TEST-1", placed.ID)
	assert.Equal(t, 100.0, placed.Total)
	assert.Equal(t, orders.StatusPlaced, placed.Status)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, orders.ShippingInfo{
		Name: "John Doe", Email: "john@example.com",
		Address: "123 Main St", City: "New York", Zip: "10001",
	}, placed.ShippingInfo)

	last, ok := f.machine.LastOrder()
	require.True(t, ok)
	assert.Equal(t, placed.ID, last.ID)
}

func TestSubmit_ReentrantSubmissionDropped(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	ctx := context.Background()

	require.NoError(t, f.machine.Begin())
	f.machine.SetForm(validForm())
	require.NoError(t, f.machine.Submit(ctx))

	assert.ErrorIs(t, f.machine.Submit(ctx), ErrSubmitInFlight)

	f.clock.Advance(DefaultSubmitDelay)
	assert.Equal(t, 1, f.orders.Len(), "exactly one order despite re-entrant submit")
}

func TestSubmit_OrderSnapshotDecoupledFromCart(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	ctx := context.Background()

	require.NoError(t, f.machine.Begin())
	f.machine.SetForm(validForm())
	require.NoError(t, f.machine.Submit(ctx))
	f.clock.Advance(DefaultSubmitDelay)

	// New cart activity after checkout must not touch the placed order.
	f.addLine(t, 55)
	placed := f.orders.All()[0]
	require.Len(t, placed.Items, 1)
	assert.Equal(t, 100.0, placed.Items[0].Price)
}

func TestSubmit_NoTransitionOutOfSuccess(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	ctx := context.Background()

	require.NoError(t, f.machine.Begin())
	f.machine.SetForm(validForm())
	require.NoError(t, f.machine.Submit(ctx))
	f.clock.Advance(DefaultSubmitDelay)
	require.Equal(t, StepSuccess, f.machine.Step())

	assert.ErrorIs(t, f.machine.Begin(), ErrWrongStep)
	assert.ErrorIs(t, f.machine.Back(), ErrWrongStep)
	assert.ErrorIs(t, f.machine.Submit(ctx), ErrWrongStep)
}

func TestSubmit_BackBlockedWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 100)
	ctx := context.Background()

	require.NoError(t, f.machine.Begin())
	f.machine.SetForm(validForm())
	require.NoError(t, f.machine.Submit(ctx))

	assert.ErrorIs(t, f.machine.Back(), ErrWrongStep)
	f.clock.Advance(DefaultSubmitDelay)
}

func TestSubmit_CustomDelay(t *testing.T) {
	ctx := context.Background()
	cartStore, err := cart.New(ctx, &memCartPersister{})
	require.NoError(t, err)
	orderStore, err := orders.New(ctx, &memOrderPersister{})
	require.NoError(t, err)

	clk := testutil.NewManualClock()
	m := New(cartStore, orderStore,
		WithClock(clk),
		WithSubmitDelay(50*time.Millisecond),
		WithIDGenerator(orders.NewFixedGenerator("ORD-X")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	p := testutil.Shirt()
	require.NoError(t, cartStore.Add(ctx, p, catalog.Variant{Size: "M"}, p.Price))
	require.NoError(t, m.Begin())
	m.SetForm(validForm())
	require.NoError(t, m.Submit(ctx))

	clk.Advance(49 * time.Millisecond)
	assert.Equal(t, StepCheckout, m.Step())
	clk.Advance(1 * time.Millisecond)
	assert.Equal(t, StepSuccess, m.Step())
}
