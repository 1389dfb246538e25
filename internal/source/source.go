// Package source defines the contract between the feed engine and an
// external content API, together with the raw record shapes it returns.
package source

import (
	"context"

	"threadfeed/internal/model"
)

// Source is implemented by external content providers.
type Source interface {
	FetchPage(ctx context.Context, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (Page, error)
	FetchDetail(ctx context.Context, scope, postID string) (Detail, error)
	Search(ctx context.Context, query, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (Page, error)
}

// Page is one page of raw posts. NextCursor is empty when no further pages exist.
type Page struct {
	Posts      []RawPost
	NextCursor string
}

// Detail is a single post with its raw reply tree.
type Detail struct {
	Post     RawPost
	Comments []RawCommentNode
}

// Query is the set of external parameters equivalent to a filter state.
type Query struct {
	Scope  string
	Sort   model.SortMode
	Window model.TimeWindow
	Query  string
	Cursor string
}

// IsSearch reports whether the query must be sent to the search endpoint.
func (q Query) IsSearch() bool {
	return q.Query != ""
}

// Do dispatches the query to the matching endpoint of src. Browsing and
// searching share this single pagination path.
func (q Query) Do(ctx context.Context, src Source) (Page, error) {
	if q.IsSearch() {
		return src.Search(ctx, q.Query, q.Scope, q.Sort, q.Window, q.Cursor)
	}
	return src.FetchPage(ctx, q.Scope, q.Sort, q.Window, q.Cursor)
}
