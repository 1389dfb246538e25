package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"threadfeed/internal/markdown"
	"threadfeed/internal/model"
	"threadfeed/internal/newsletter"
)

// RankSource reads collected leaderboards.
type RankSource interface {
	TopRanked(ctx context.Context, scope string, sort model.SortMode, n int) ([]model.RankedPost, error)
}

// DigestBuilder renders each scope's leaderboard into a dated Markdown digest.
// A digest whose post list did not change since the last write is left alone.
type DigestBuilder struct {
	Store         RankSource
	Scopes        []string
	Sort          model.SortMode
	TopN          int
	MinItems      int
	OutputDir     string
	TitleTemplate string // supports {.CurrentDate} and {.Scope}
	BaseURL       string // prefix for permalinks
	Interval      time.Duration

	now func() time.Time
}

func (w *DigestBuilder) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return err
	}
	// run immediately then on interval
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

func (w *DigestBuilder) runOnce(ctx context.Context) {
	for _, scope := range w.Scopes {
		path, written, err := w.Write(ctx, scope)
		switch {
		case err != nil:
			slog.Error("digest: build failed", "scope", scope, "error", err)
		case written:
			slog.Info("digest: written", "scope", scope, "path", path)
		default:
			slog.Debug("digest: unchanged or too small", "scope", scope, "path", path)
		}
	}
}

// Write renders the digest of scope. written is false when the leaderboard
// holds fewer than MinItems posts or the existing digest lists the same posts.
func (w *DigestBuilder) Write(ctx context.Context, scope string) (path string, written bool, err error) {
	now := w.clock()
	sort := w.Sort
	if sort == "" {
		sort = model.SortHot
	}
	topN := w.TopN
	if topN <= 0 {
		topN = 20
	}
	ranked, err := w.Store.TopRanked(ctx, scope, sort, topN)
	if err != nil {
		return "", false, err
	}
	path = filepath.Join(w.OutputDir, strings.ToLower(scope), w.filename(sort, now))
	if len(ranked) == 0 || len(ranked) < w.MinItems {
		return path, false, nil
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Post.ID
	}
	if prev, err := markdown.ParseFile(path); err == nil && slices.Equal(prev.Strings("post_ids"), ids) {
		return path, false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("digest: existing file unreadable, rewriting", "path", path, "error", err)
	}

	out, err := newsletter.Render(w.data(scope, sort, ranked, ids, now))
	if err != nil {
		return "", false, fmt.Errorf("digest: render: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (w *DigestBuilder) filename(sort model.SortMode, now time.Time) string {
	return fmt.Sprintf("%s-%s.md", sort, now.UTC().Format("20060102"))
}

func (w *DigestBuilder) data(scope string, sort model.SortMode, ranked []model.RankedPost, ids []string, now time.Time) newsletter.Data {
	title := strings.TrimSpace(w.TitleTemplate)
	if title == "" {
		title = "r/{.Scope} {.CurrentDate}"
	}
	base := strings.TrimRight(w.BaseURL, "/")
	d := newsletter.Data{
		Title:    newsletter.ExpandVars(title, now, scope),
		Slug:     strings.TrimSuffix(fmt.Sprintf("%s-%s", strings.ToLower(scope), w.filename(sort, now)), ".md"),
		Datetime: now.UTC().Format("2006-01-02 15:04"),
		Scope:    scope,
		Sort:     string(sort),
		PostIDs:  ids,
		Items:    make([]newsletter.Item, 0, len(ranked)),
	}
	for _, r := range ranked {
		p := r.Post
		permalink := p.Permalink
		if strings.HasPrefix(permalink, "/") {
			permalink = base + permalink
		}
		link := p.URL
		if link == "" {
			link = permalink
		}
		media := ""
		if p.HasMedia() {
			media = string(p.Media.Kind)
		}
		d.Items = append(d.Items, newsletter.Item{
			Title:     p.Title,
			URL:       link,
			Permalink: permalink,
			Scope:     p.Subreddit,
			Author:    p.Author,
			Score:     p.Score,
			Comments:  p.NumComments,
			Media:     media,
			Rank:      r.Score,
		})
	}
	return d
}

func (w *DigestBuilder) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}
