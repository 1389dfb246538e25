// Package filter selects the posts eligible for ranking, or builds the
// equivalent query for a source that filters server-side.
package filter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

// WindowSeconds maps each bounded time window to its length.
var WindowSeconds = map[model.TimeWindow]int64{
	model.WindowHour:  3600,
	model.WindowDay:   86400,
	model.WindowWeek:  604800,
	model.WindowMonth: 2592000,
	model.WindowYear:  31536000,
}

// Apply returns the posts matching filters, in their original order:
// text query first, then scope, then the top-only time window.
func Apply(posts []model.Post, filters model.FilterState, now time.Time) []model.Post {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(filters.Query))
	scope := fold.String(strings.TrimSpace(filters.Scope))

	var cutoff int64
	windowed := false
	if secs, ok := WindowSeconds[filters.EffectiveWindow()]; ok {
		cutoff = now.Unix() - secs
		windowed = true
	}

	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if query != "" &&
			!strings.Contains(fold.String(p.Title), query) &&
			!strings.Contains(fold.String(p.Body), query) {
			continue
		}
		if !filters.AllScopes() && fold.String(p.Subreddit) != scope {
			continue
		}
		if windowed && p.Created <= cutoff {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildQuery maps filters to the parameters of a server-side request.
func BuildQuery(filters model.FilterState, cursor string) source.Query {
	f := filters.Normalized()
	scope := f.Scope
	if f.AllScopes() {
		scope = model.ScopeAll
	}
	return source.Query{
		Scope:  scope,
		Sort:   f.Sort,
		Window: f.EffectiveWindow(),
		Query:  f.Query,
		Cursor: cursor,
	}
}
