package feed

import (
	"context"
	"fmt"
	"time"

	"threadfeed/internal/comments"
	"threadfeed/internal/metrics"
	"threadfeed/internal/model"
	"threadfeed/internal/normalize"
	"threadfeed/internal/source"
)

// Detail is the view model of a single post with its comment tree.
type Detail struct {
	Post     model.Post      `json:"post" yaml:"post"`
	Comments []model.Comment `json:"comments" yaml:"comments"`
	// TopLevel counts direct replies; Total counts the whole tree.
	TopLevel int `json:"top_level" yaml:"top_level"`
	Total    int `json:"total" yaml:"total"`
}

// LoadDetail fetches a post and rebuilds its comment tree from scratch.
func LoadDetail(ctx context.Context, src source.Source, scope, postID string) (Detail, error) {
	start := time.Now()
	raw, err := src.FetchDetail(ctx, scope, postID)
	metrics.FetchDuration.WithLabelValues("detail").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("detail", "error").Inc()
		return Detail{}, fmt.Errorf("feed: detail %s: %w", postID, err)
	}
	metrics.FetchesTotal.WithLabelValues("detail", "ok").Inc()

	post, ok := normalize.Post(raw.Post)
	if !ok {
		return Detail{}, fmt.Errorf("feed: detail %s: %w", postID, source.ErrNotFound)
	}
	tree := comments.Build(raw.Comments)
	return Detail{
		Post:     post,
		Comments: tree,
		TopLevel: len(tree),
		Total:    comments.CountAll(tree),
	}, nil
}
