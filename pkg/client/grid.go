package client

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDelay is how long the grid waits after the last keystroke
// before searching.
const DefaultSearchDelay = 500 * time.Millisecond

// Fetcher loads one page for q.
type Fetcher[T any] func(ctx context.Context, q Query) (*Page[T], error)

// GridState is a snapshot of a Grid.
type GridState[T any] struct {
	Query   Query
	Rows    []T
	Total   int64
	Loading bool
	Err     error
	// RequestID is the id of the request whose result is shown.
	RequestID uint64
}

type GridOption[T any] func(*Grid[T])

func WithSearchDelay[T any](d time.Duration) GridOption[T] {
	return func(g *Grid[T]) { g.debounce = NewDebouncer(d) }
}

// WithQuery sets the initial query.
func WithQuery[T any](q Query) GridOption[T] {
	return func(g *Grid[T]) { g.query = q.clone() }
}

// OnChange is called, outside the grid lock, after every state change.
func OnChange[T any](f func(GridState[T])) GridOption[T] {
	return func(g *Grid[T]) { g.onChange = f }
}

// Grid owns the query of a paginated table. Page, limit, sort and filter
// changes fetch at once; search changes are debounced. Each fetch gets an
// increasing request id and only the result of the latest issued request is
// applied, so a slow earlier response never overwrites a newer one.
type Grid[T any] struct {
	fetch    Fetcher[T]
	debounce *Debouncer
	onChange func(GridState[T])

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	query  Query
	issued uint64
	state  GridState[T]
	closed bool
}

func NewGrid[T any](ctx context.Context, fetch Fetcher[T], opts ...GridOption[T]) *Grid[T] {
	g := &Grid[T]{fetch: fetch}
	g.ctx, g.cancel = context.WithCancel(ctx)
	for _, opt := range opts {
		opt(g)
	}
	if g.debounce == nil {
		g.debounce = NewDebouncer(DefaultSearchDelay)
	}
	if g.query.Page < 1 {
		g.query.Page = 1
	}
	g.state.Query = g.query.clone()
	return g
}

// Refresh fetches the current query again and returns the request id.
func (g *Grid[T]) Refresh() uint64 {
	g.mu.Lock()
	return g.issueLocked()
}

func (g *Grid[T]) SetPage(page int) uint64 {
	if page < 1 {
		page = 1
	}
	g.mu.Lock()
	g.query.Page = page
	return g.issueLocked()
}

// SetLimit changes the page size and goes back to the first page.
func (g *Grid[T]) SetLimit(limit int) uint64 {
	g.mu.Lock()
	g.query.Limit = limit
	g.query.Page = 1
	return g.issueLocked()
}

func (g *Grid[T]) SetSort(key, order string) uint64 {
	g.mu.Lock()
	g.query.Sort = key
	g.query.Order = order
	return g.issueLocked()
}

// SetFilter replaces the values of one filter; no values clears it. The grid
// goes back to the first page.
func (g *Grid[T]) SetFilter(key string, values ...string) uint64 {
	g.mu.Lock()
	if g.query.Filters == nil {
		g.query.Filters = map[string][]string{}
	}
	if len(values) == 0 {
		delete(g.query.Filters, key)
	} else {
		g.query.Filters[key] = append([]string(nil), values...)
	}
	g.query.Page = 1
	return g.issueLocked()
}

// SetSearch records the term and fetches once typing pauses.
func (g *Grid[T]) SetSearch(term string) {
	g.mu.Lock()
	g.query.Search = term
	g.query.Page = 1
	g.state.Query = g.query.clone()
	g.mu.Unlock()

	g.debounce.Trigger(func() {
		g.mu.Lock()
		g.issueLocked()
	})
}

func (g *Grid[T]) State() GridState[T] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Wait blocks until every issued request has returned.
func (g *Grid[T]) Wait() {
	g.wg.Wait()
}

// Close drops a pending search, cancels in-flight requests and waits for
// them. Changes made after Close fetch nothing.
func (g *Grid[T]) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.debounce.Stop()
	g.cancel()
	g.wg.Wait()
}

// issueLocked starts a fetch for the current query. It must be called with
// g.mu held and releases it. A closed grid returns 0 without fetching.
func (g *Grid[T]) issueLocked() uint64 {
	if g.closed {
		g.mu.Unlock()
		return 0
	}
	g.issued++
	id := g.issued
	q := g.query.clone()
	g.state.Query = q.clone()
	g.state.Loading = true
	g.wg.Add(1)
	snapshot := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snapshot)
	go g.run(id, q)
	return id
}

func (g *Grid[T]) run(id uint64, q Query) {
	defer g.wg.Done()

	page, err := g.fetch(g.ctx, q)

	g.mu.Lock()
	if id != g.issued {
		g.mu.Unlock()
		return
	}
	g.state.RequestID = id
	g.state.Loading = false
	g.state.Err = err
	if err == nil && page != nil {
		g.state.Rows = page.Items
		g.state.Total = page.Total
	}
	snapshot := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snapshot)
}

func (g *Grid[T]) snapshotLocked() GridState[T] {
	s := g.state
	s.Query = g.state.Query.clone()
	s.Rows = append([]T(nil), g.state.Rows...)
	return s
}

func (g *Grid[T]) notify(s GridState[T]) {
	if g.onChange != nil {
		g.onChange(s)
	}
}
