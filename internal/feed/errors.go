package feed

import "errors"

var (
	// ErrFetchInFlight is returned when a request would overlap a pending one.
	ErrFetchInFlight = errors.New("feed: fetch already in flight")
	// ErrNotLoaded is returned by FetchNextPage before a first page was applied.
	ErrNotLoaded = errors.New("feed: first page not loaded")
	// ErrNoMorePages is returned by FetchNextPage when the cursor is exhausted.
	ErrNoMorePages = errors.New("feed: no more pages")
	// ErrStaleResponse is returned when a response arrived after the filters
	// that requested it were replaced; the response was discarded.
	ErrStaleResponse = errors.New("feed: stale response discarded")
)
