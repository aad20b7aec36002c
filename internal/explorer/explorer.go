package explorer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/roach88/merch/internal/catalog"
	"github.com/roach88/merch/internal/clock"
)

// Fetcher retrieves one page of catalog results. Implemented by
// api.Client; tests supply fakes.
type Fetcher interface {
	FetchProducts(ctx context.Context, skip, limit int, category, search string) catalog.Page
}

// SortOrder is the client-side price sort mode.
type SortOrder string

const (
	SortNone SortOrder = "none"
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

const (
	// DefaultPageSize is the fixed page size requested from the remote.
	DefaultPageSize = 12

	// DefaultDebounce is the quiet period a search or category change
	// must survive unchanged before a query fires.
	DefaultDebounce = 500 * time.Millisecond
)

// Snapshot is a point-in-time copy of the engine's visible state.
type Snapshot struct {
	Items    []catalog.Product
	Total    int
	HasMore  bool
	Fetching bool
	Search   string
	Category string
	Sort     SortOrder
}

// Engine is the catalog query engine.
type Engine struct {
	mu sync.Mutex

	fetcher  Fetcher
	clk      clock.Clock
	logger   *slog.Logger
	pageSize int
	debounce time.Duration

	search   string
	category string
	sortMode SortOrder

	items    []catalog.Product
	total    int
	cursor   int
	hasMore  bool
	fetching bool
	gen      uint64

	debounceTimer clock.Timer
	updates       chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock (tests use a manual clock).
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clk = c }
}

// WithPageSize overrides the page size requested from the remote.
func WithPageSize(n int) Option {
	return func(e *Engine) { e.pageSize = n }
}

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine in its initial state: empty result set, category
// "all", no search text, no sort.
func New(fetcher Fetcher, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		fetcher:  fetcher,
		clk:      clock.NewSystem(),
		logger:   slog.Default(),
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		category: CategoryAll,
		sortMode: SortNone,
		hasMore:  true,
		updates:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close cancels any pending debounce timer and in-flight fetches.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
		e.debounceTimer = nil
	}
	e.mu.Unlock()
	e.cancel()
}

// Updates returns a coalescing signal channel: a receive means the
// snapshot may have changed since the last receive. Multiple changes can
// coalesce into one signal.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Snapshot returns a copy of the current visible state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]catalog.Product, len(e.items))
	copy(items, e.items)
	return Snapshot{
		Items:    items,
		Total:    e.total,
		HasMore:  e.hasMore,
		Fetching: e.fetching,
		Search:   e.search,
		Category: e.category,
		Sort:     e.sortMode,
	}
}

// SetSearch records new search text and restarts the debounce window.
// The query fires only after the quiet period elapses with no further
// search or category change.
func (e *Engine) SetSearch(text string) {
	e.mu.Lock()
	e.search = text
	e.restartDebounceLocked()
	e.mu.Unlock()
}

// SetCategory records a new category filter ("all" clears it) and
// restarts the debounce window.
func (e *Engine) SetCategory(category string) {
	e.mu.Lock()
	e.category = category
	e.restartDebounceLocked()
	e.mu.Unlock()
}

// restartDebounceLocked arms the quiet-period timer, cancelling any timer
// already pending. Callers must hold e.mu.
func (e *Engine) restartDebounceLocked() {
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
	}
	e.debounceTimer = e.clk.AfterFunc(e.debounce, e.fire)
}

// Refresh fires the current query immediately, bypassing the debounce
// window. Used for the initial load.
func (e *Engine) Refresh() {
	e.mu.Lock()
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
		e.debounceTimer = nil
	}
	e.mu.Unlock()
	e.fire()
}

// fire starts a new query generation: the result set is replaced, the
// cursor resets, and any response still in flight for an older generation
// is invalidated.
func (e *Engine) fire() {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.cursor = 0
	e.items = nil
	e.total = 0
	e.hasMore = true
	e.fetching = true
	search, category := e.search, e.category
	e.mu.Unlock()
	e.notify()

	e.logger.Debug("query fired", "gen", gen, "search", search, "category", category)

	page := e.fetcher.FetchProducts(e.ctx, 0, e.pageSize, category, search)
	e.apply(gen, 0, page, true)
}

// LoadNextPage requests the page at the current cursor and appends it.
// Dropped silently while a fetch is in flight or after the remote has
// signalled exhaustion.
func (e *Engine) LoadNextPage() {
	e.mu.Lock()
	if e.fetching || !e.hasMore {
		e.mu.Unlock()
		return
	}
	e.fetching = true
	gen := e.gen
	skip := e.cursor
	search, category := e.search, e.category
	e.mu.Unlock()
	e.notify()

	page := e.fetcher.FetchProducts(e.ctx, skip, e.pageSize, category, search)
	e.apply(gen, skip, page, false)
}

// apply installs a completed page if its generation is still current.
// Stale completions are dropped without touching any state, including the
// fetching flag: the newer generation owns it now.
func (e *Engine) apply(gen uint64, skip int, page catalog.Page, replace bool) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		e.logger.Debug("stale response dropped", "gen", gen, "current", e.gen)
		return
	}

	if replace {
		e.items = append([]catalog.Product(nil), page.Products...)
	} else {
		e.items = append(e.items, page.Products...)
	}
	e.total = page.Total
	e.cursor = skip + e.pageSize
	if len(page.Products) < e.pageSize {
		e.hasMore = false
	}
	e.fetching = false
	e.sortLocked()
	e.mu.Unlock()
	e.notify()
}

// SetPriceSort re-sorts the accumulated results in place. Purely local;
// never triggers a fetch.
func (e *Engine) SetPriceSort(order SortOrder) {
	e.mu.Lock()
	e.sortMode = order
	e.sortLocked()
	e.mu.Unlock()
	e.notify()
}

// sortLocked applies the active sort mode. The sort is stable so items
// with equal prices keep their fetch order. Callers must hold e.mu.
func (e *Engine) sortLocked() {
	switch e.sortMode {
	case SortAsc:
		sort.SliceStable(e.items, func(i, j int) bool {
			return e.items[i].Price < e.items[j].Price
		})
	case SortDesc:
		sort.SliceStable(e.items, func(i, j int) bool {
			return e.items[i].Price > e.items[j].Price
		})
	}
}

// notify signals subscribers without blocking; pending signals coalesce.
func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
