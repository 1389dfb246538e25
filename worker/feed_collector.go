package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"threadfeed/internal/feed"
	"threadfeed/internal/metrics"
	"threadfeed/internal/model"
	"threadfeed/internal/ranking"
	"threadfeed/internal/source"
)

// RankStore receives collected posts.
type RankStore interface {
	ReplaceRanked(ctx context.Context, scope string, sort model.SortMode, ranked []model.RankedPost, keep int) (int, error)
}

// FeedCollector walks the first pages of each scope's feed, scores the
// posts and replaces the leaderboard of each scope and sort mode with the
// result, so scores and windows are re-evaluated on every run.
type FeedCollector struct {
	Source   source.Source
	Store    RankStore
	Scopes   []string
	Sort     model.SortMode
	Window   model.TimeWindow
	Pages    int // pages fetched per scope and run
	TopN     int // leaderboard size
	Interval time.Duration

	now func() time.Time
}

func (w *FeedCollector) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 15 * time.Minute
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *FeedCollector) runOnce(ctx context.Context) {
	scopes := w.Scopes
	if len(scopes) == 0 {
		scopes = []string{model.ScopeAll}
	}
	for _, scope := range scopes {
		if ctx.Err() != nil {
			return
		}
		stored, err := w.collect(ctx, scope)
		if err != nil {
			slog.Error("collector: scope failed", "scope", scope, "error", err)
			continue
		}
		slog.Info("collector: completed for scope", "scope", scope, "sort", w.sortMode(), "stored", stored)
	}
}

// collect loads up to Pages pages of scope and stores the TopN best posts.
// Pages loaded before a failure are still stored.
func (w *FeedCollector) collect(ctx context.Context, scope string) (int, error) {
	sort := w.sortMode()
	filters := model.FilterState{Scope: scope, Sort: sort, Window: w.Window}
	c := feed.NewController(w.Source, feed.ModeClient, filters)

	if err := c.FetchFirstPage(ctx, filters); err != nil {
		return 0, err
	}
	var pageErr error
	for i := 1; i < max(w.Pages, 1); i++ {
		err := c.FetchNextPage(ctx)
		if errors.Is(err, feed.ErrNoMorePages) {
			break
		}
		if err != nil {
			pageErr = err
			break
		}
	}

	now := w.clock()
	view := c.View(now)
	ranked := make([]model.RankedPost, len(view))
	for i, p := range view {
		ranked[i] = model.RankedPost{Post: p, Score: ranking.Value(p, sort, now)}
	}
	stored, err := w.Store.ReplaceRanked(ctx, scope, sort, ranked, w.TopN)
	if err != nil {
		return 0, err
	}
	metrics.PostsCollected.WithLabelValues(scope, string(sort)).Add(float64(stored))
	if pageErr != nil {
		slog.Warn("collector: stopped paging early", "scope", scope, "error", pageErr)
	}
	return stored, nil
}

func (w *FeedCollector) sortMode() model.SortMode {
	if w.Sort == "" {
		return model.SortHot
	}
	return w.Sort
}

func (w *FeedCollector) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}
