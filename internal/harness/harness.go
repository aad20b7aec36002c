package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/catalog"
	"github.com/roach88/merch/internal/checkout"
	"github.com/roach88/merch/internal/explorer"
	"github.com/roach88/merch/internal/orders"
	"github.com/roach88/merch/internal/store"
	"github.com/roach88/merch/internal/testutil"
)

// runner wires the real stores to deterministic collaborators for one
// scenario execution.
type runner struct {
	clock   *testutil.ManualClock
	cart    *cart.Store
	orders  *orders.Store
	machine *checkout.Machine
	engine  *explorer.Engine
	catalog *scriptedCatalog
	result  *Result
	seq     int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database, a manual clock,
// and a scripted catalog built from the scenario's canned products. The
// result carries the trace, a final-state snapshot, and any assertion
// failures.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cartStore, err := cart.New(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart store: %w", err)
	}
	orderStore, err := orders.New(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to create order store: %w", err)
	}

	r := &runner{
		clock:  testutil.NewManualClock(),
		cart:   cartStore,
		orders: orderStore,
		result: &Result{},
	}
	r.catalog = &scriptedCatalog{items: scenario.Catalog, record: r.record}

	engineOpts := []explorer.Option{
		explorer.WithClock(r.clock),
		explorer.WithLogger(logger),
	}
	if scenario.PageSize > 0 {
		engineOpts = append(engineOpts, explorer.WithPageSize(scenario.PageSize))
	}
	if scenario.DebounceMS > 0 {
		engineOpts = append(engineOpts, explorer.WithDebounce(time.Duration(scenario.DebounceMS)*time.Millisecond))
	}
	r.engine = explorer.New(r.catalog, engineOpts...)
	defer r.engine.Close()

	machineOpts := []checkout.Option{
		checkout.WithClock(r.clock),
		checkout.WithLogger(logger),
	}
	if scenario.SubmitDelayMS > 0 {
		machineOpts = append(machineOpts, checkout.WithSubmitDelay(time.Duration(scenario.SubmitDelayMS)*time.Millisecond))
	}
	r.machine = checkout.New(cartStore, orderStore, machineOpts...)

	for i, step := range scenario.Steps {
		if err := r.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
	}

	r.snapshotFinalState()

	for _, msg := range EvaluateAssertions(r.result, scenario.Assertions) {
		r.result.AddError(msg)
	}
	return r.result, nil
}

// record appends a trace event with the next sequence number.
func (r *runner) record(op string, detail map[string]any) {
	r.seq++
	r.result.Trace = append(r.result.Trace, TraceEvent{Seq: r.seq, Op: op, Detail: detail})
}

// execute runs one step, recording it before any effect it triggers so
// fetches and placed orders trace after their cause.
func (r *runner) execute(ctx context.Context, step Step) error {
	switch step.Op {
	case OpSearch:
		r.record(OpSearch, map[string]any{"value": step.Value})
		r.engine.SetSearch(step.Value)

	case OpCategory:
		r.record(OpCategory, map[string]any{"value": step.Value})
		r.engine.SetCategory(step.Value)

	case OpRefresh:
		r.record(OpRefresh, nil)
		r.engine.Refresh()

	case OpNextPage:
		r.record(OpNextPage, nil)
		r.engine.LoadNextPage()

	case OpSort:
		r.record(OpSort, map[string]any{"value": step.Value})
		r.engine.SetPriceSort(explorer.SortOrder(step.Value))

	case OpAdvance:
		r.record(OpAdvance, map[string]any{"ms": step.MS})
		before := r.orders.Len()
		r.clock.Advance(time.Duration(step.MS) * time.Millisecond)
		if r.orders.Len() > before {
			order := r.orders.All()[0]
			r.record("order_placed", map[string]any{
				"order_id": order.ID,
				"total":    order.Total,
			})
		}

	case OpAdd:
		item, ok := r.catalog.byID(step.ProductID)
		if !ok {
			return fmt.Errorf("unknown product_id %d", step.ProductID)
		}
		p := item.product()
		variant := catalog.Variant{Color: step.Color, Size: step.Size}
		if variant.Color == "" && len(p.Colors) > 0 {
			variant.Color = p.Colors[0]
		}
		if variant.Size == "" && len(p.Sizes) > 0 {
			variant.Size = p.Sizes[0]
		}
		price := catalog.EffectivePrice(p.Price, variant.Size)
		r.record(OpAdd, map[string]any{
			"product_id": p.ID,
			"line_id":    cart.LineID(p.ID, variant),
			"color":      variant.Color,
			"size":       variant.Size,
			"price":      price,
		})
		return r.cart.Add(ctx, p, variant, price)

	case OpUpdateQuantity:
		r.record(OpUpdateQuantity, map[string]any{"line_id": step.LineID, "quantity": step.Quantity})
		return r.cart.UpdateQuantity(ctx, step.LineID, step.Quantity)

	case OpRemove:
		r.record(OpRemove, map[string]any{"line_id": step.LineID})
		return r.cart.Remove(ctx, step.LineID)

	case OpClear:
		r.record(OpClear, nil)
		return r.cart.Clear(ctx)

	case OpBegin:
		return r.guarded(OpBegin, nil, step.MustFail, r.machine.Begin())

	case OpBack:
		return r.guarded(OpBack, nil, step.MustFail, r.machine.Back())

	case OpField:
		r.record(OpField, map[string]any{"field": step.Field, "value": step.Value})
		r.machine.SetField(step.Field, step.Value)

	case OpForm:
		fields := make(map[string]any, len(step.Fields))
		for k, v := range step.Fields {
			fields[k] = v
		}
		r.record(OpForm, map[string]any{"fields": fields})
		r.machine.SetForm(checkout.Form{
			Name:    step.Fields[checkout.FieldName],
			Email:   step.Fields[checkout.FieldEmail],
			Address: step.Fields[checkout.FieldAddress],
			City:    step.Fields[checkout.FieldCity],
			Zip:     step.Fields[checkout.FieldZip],
			Card:    step.Fields[checkout.FieldCard],
			Exp:     step.Fields[checkout.FieldExp],
			CVC:     step.Fields[checkout.FieldCVC],
		})

	case OpSubmit:
		return r.guarded(OpSubmit, nil, step.MustFail, r.machine.Submit(ctx))

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// guarded records an op that can be rejected by a state-machine guard and
// reconciles the outcome with the step's must_fail expectation.
func (r *runner) guarded(op string, detail map[string]any, mustFail bool, err error) error {
	if err != nil {
		if detail == nil {
			detail = map[string]any{}
		}
		detail["rejected"] = err.Error()
	}
	r.record(op, detail)

	if mustFail && err == nil {
		return fmt.Errorf("expected guard rejection, got success")
	}
	if !mustFail && err != nil {
		return err
	}
	return nil
}

// snapshotFinalState captures the stores after the last step.
func (r *runner) snapshotFinalState() {
	snap := r.engine.Snapshot()
	history := r.orders.All()

	ids := make([]string, len(history))
	for i, o := range history {
		ids[i] = o.ID
	}

	r.result.FinalState = FinalState{
		Step:      string(r.machine.Step()),
		CartLines: r.cart.Len(),
		CartTotal: r.cart.TotalPrice(),
		Orders:    len(history),
		OrderIDs:  ids,
		Visible:   len(snap.Items),
		Total:     snap.Total,
		HasMore:   snap.HasMore,
	}
}

// scriptedCatalog serves the scenario's canned product set through the
// same paging and filter semantics as the remote, recording every fetch
// in the trace.
type scriptedCatalog struct {
	items  []CatalogItem
	record func(op string, detail map[string]any)
}

func (c *scriptedCatalog) byID(id int) (CatalogItem, bool) {
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// product converts a canned item into an enriched catalog product.
func (item CatalogItem) product() catalog.Product {
	return catalog.Enrich(catalog.Product{
		ID:       item.ID,
		Title:    item.Title,
		Price:    item.Price,
		Category: item.Category,
		Stock:    item.Stock,
	})
}

// FetchProducts implements explorer.Fetcher. Search matches the title,
// case-insensitively; otherwise a non-"all" category filters exactly.
func (c *scriptedCatalog) FetchProducts(ctx context.Context, skip, limit int, category, search string) catalog.Page {
	c.record("fetch", map[string]any{
		"skip":     skip,
		"limit":    limit,
		"category": category,
		"search":   search,
	})

	var matches []catalog.Product
	for _, item := range c.items {
		switch {
		case search != "":
			if strings.Contains(strings.ToLower(item.Title), strings.ToLower(search)) {
				matches = append(matches, item.product())
			}
		case category != "" && category != explorer.CategoryAll:
			if item.Category == category {
				matches = append(matches, item.product())
			}
		default:
			matches = append(matches, item.product())
		}
	}

	total := len(matches)
	if skip > total {
		skip = total
	}
	end := min(skip+limit, total)
	return catalog.Page{Products: matches[skip:end], Total: total}
}
