package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadfeed/internal/markdown"
	"threadfeed/internal/model"
)

type fixedRanks struct {
	ranked []model.RankedPost
}

func (f *fixedRanks) TopRanked(_ context.Context, _ string, _ model.SortMode, n int) ([]model.RankedPost, error) {
	return f.ranked[:min(n, len(f.ranked))], nil
}

func TestDigestWriteAndSkipUnchanged(t *testing.T) {
	store := &fixedRanks{ranked: []model.RankedPost{
		{Post: model.Post{ID: "a", Title: `Say "hi"`, Subreddit: "golang", Score: 40, Permalink: "/r/golang/comments/a/x/"}, Score: 1.5},
		{Post: model.Post{ID: "b", Title: "Video", Subreddit: "golang", URL: "https://youtu.be/x",
			Media: model.Media{Kind: model.MediaYouTube, URL: "https://youtu.be/x"}}, Score: 0.5},
	}}
	dir := t.TempDir()
	w := &DigestBuilder{Store: store, Sort: model.SortHot, OutputDir: dir, BaseURL: "https://www.reddit.com",
		now: func() time.Time { return time.Date(2025, 10, 24, 8, 0, 0, 0, time.UTC) }}

	path, written, err := w.Write(context.Background(), "GoLang")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, filepath.Join(dir, "golang", "hot-20251024.md"), path)

	doc, err := markdown.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "r/GoLang 2025-10-24", doc.Frontmatter["title"])
	assert.Equal(t, "golang-hot-20251024", doc.Frontmatter["slug"])
	assert.Equal(t, []string{"a", "b"}, doc.Strings("post_ids"))
	assert.Contains(t, doc.Body, `## 1. [Say "hi"](https://www.reddit.com/r/golang/comments/a/x/)`)
	assert.Contains(t, doc.Body, "## 2. [Video](https://youtu.be/x)")
	assert.Contains(t, doc.Body, "· youtube ·")

	_, written, err = w.Write(context.Background(), "GoLang")
	require.NoError(t, err)
	assert.False(t, written)

	store.ranked = store.ranked[1:]
	_, written, err = w.Write(context.Background(), "GoLang")
	require.NoError(t, err)
	assert.True(t, written)
}

func TestDigestRespectsMinItems(t *testing.T) {
	store := &fixedRanks{ranked: []model.RankedPost{{Post: model.Post{ID: "a"}}}}
	dir := t.TempDir()
	w := &DigestBuilder{Store: store, OutputDir: dir, MinItems: 2}

	path, written, err := w.Write(context.Background(), "all")
	require.NoError(t, err)
	assert.False(t, written)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
