// Package feed owns the filter and pagination state of a feed and drives the
// fetch sequence against a content source.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"threadfeed/internal/filter"
	"threadfeed/internal/metrics"
	"threadfeed/internal/model"
	"threadfeed/internal/normalize"
	"threadfeed/internal/ranking"
	"threadfeed/internal/source"
)

// Mode selects where filtering and ranking happen.
type Mode string

const (
	// ModeClient fetches pages with the server query and then filters and
	// ranks the merged post list locally.
	ModeClient Mode = "client"
	// ModeServer trusts the source to return filtered, sorted pages; the
	// view is the arrival order.
	ModeServer Mode = "server"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeClient, ModeServer:
		return m, nil
	case "":
		return ModeClient, nil
	default:
		return "", fmt.Errorf("feed: unknown mode %q", s)
	}
}

// Controller is the single owner of a feed's FilterState and FeedState.
//
// At most one fetch is in flight at a time. Every fetch is tagged with the
// generation current when it started; a response whose generation was
// superseded by a filter change is dropped instead of applied.
type Controller struct {
	src  source.Source
	mode Mode

	mu         sync.Mutex
	filters    model.FilterState
	state      model.FeedState
	generation uint64
	cancel     context.CancelFunc
}

// NewController creates an idle controller.
func NewController(src source.Source, mode Mode, filters model.FilterState) *Controller {
	if mode == "" {
		mode = ModeClient
	}
	return &Controller{
		src:     src,
		mode:    mode,
		filters: filters.Normalized(),
		state:   model.FeedState{Status: model.StatusIdle},
	}
}

// Filters returns the current filter set.
func (c *Controller) Filters() model.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// State returns a copy of the feed state.
func (c *Controller) State() model.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Posts = append([]model.Post(nil), c.state.Posts...)
	return s
}

// View returns the feed as it should be displayed at now.
func (c *Controller) View(now time.Time) []model.Post {
	c.mu.Lock()
	posts := append([]model.Post(nil), c.state.Posts...)
	filters := c.filters
	c.mu.Unlock()

	if c.mode == ModeServer {
		return posts
	}
	return ranking.Rank(filter.Apply(posts, filters, now), filters.Sort, now)
}

// FetchFirstPage restarts pagination for filters. A pending initial load
// for the same filters is not repeated (ErrFetchInFlight); any other pending
// fetch is superseded and its response will be discarded.
//
// On success the post list and cursor are replaced. On failure the previous
// post list is kept and the error is recorded on the state.
func (c *Controller) FetchFirstPage(ctx context.Context, filters model.FilterState) error {
	filters = filters.Normalized()

	c.mu.Lock()
	if c.state.Status == model.StatusLoadingInitial && c.filters == filters {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.filters = filters
	c.state.Cursor = ""
	c.state.Loaded = false
	c.state.Status = model.StatusLoadingInitial
	c.state.Err = ""
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	page, err := c.do(fctx, "initial", filter.BuildQuery(filters, ""))

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.dropStale(gen)
		return ErrStaleResponse
	}
	c.cancel = nil
	if err != nil {
		c.state.Status = model.StatusFailed
		c.state.Err = err.Error()
		return fmt.Errorf("feed: first page: %w", err)
	}
	c.state.Posts = normalize.Posts(page.Posts)
	c.state.Cursor = page.NextCursor
	c.state.Status = model.StatusSucceeded
	c.state.Loaded = true
	slog.Info("feed: first page applied", "scope", filters.Scope, "sort", filters.Sort, "posts", len(c.state.Posts), "more", c.state.HasMore())
	return nil
}

// FetchNextPage appends the page following the stored cursor. It is allowed
// after a successful load, including after a failed load-more, as long as
// the cursor is not exhausted. No de-duplication is performed.
//
// On failure the post list and cursor are left untouched so the caller can
// retry.
func (c *Controller) FetchNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Pending() {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	if !c.state.Loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if !c.state.HasMore() {
		c.mu.Unlock()
		return ErrNoMorePages
	}
	gen := c.generation
	filters := c.filters
	cursor := c.state.Cursor
	c.state.Status = model.StatusLoadingMore
	c.state.Err = ""
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	page, err := c.do(fctx, "more", filter.BuildQuery(filters, cursor))

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.dropStale(gen)
		return ErrStaleResponse
	}
	c.cancel = nil
	if err != nil {
		c.state.Status = model.StatusFailed
		c.state.Err = err.Error()
		return fmt.Errorf("feed: next page: %w", err)
	}
	c.state.Posts = append(c.state.Posts, normalize.Posts(page.Posts)...)
	c.state.Cursor = page.NextCursor
	c.state.Status = model.StatusSucceeded
	slog.Info("feed: page appended", "scope", filters.Scope, "posts", len(c.state.Posts), "more", c.state.HasMore())
	return nil
}

// Update applies fn to a copy of the current filters and reloads the feed.
func (c *Controller) Update(ctx context.Context, fn func(f *model.FilterState)) error {
	f := c.Filters()
	fn(&f)
	return c.FetchFirstPage(ctx, f)
}

// dropStale must be called with c.mu held.
func (c *Controller) dropStale(gen uint64) {
	metrics.StaleResponses.Inc()
	slog.Debug("feed: discarded stale response", "generation", gen, "current", c.generation)
}

func (c *Controller) do(ctx context.Context, kind string, q source.Query) (source.Page, error) {
	reqID := uuid.NewString()
	start := time.Now()
	slog.Debug("feed: fetch started", "request_id", reqID, "kind", kind,
		"scope", q.Scope, "sort", q.Sort, "window", q.Window, "query", q.Query, "cursor", q.Cursor)

	page, err := q.Do(ctx, c.src)

	metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.FetchesTotal.WithLabelValues(kind, status).Inc()
	if err != nil {
		slog.Warn("feed: fetch failed", "request_id", reqID, "kind", kind, "error", err)
	} else {
		slog.Debug("feed: fetch done", "request_id", reqID, "kind", kind, "posts", len(page.Posts), "next", page.NextCursor)
	}
	return page, err
}
