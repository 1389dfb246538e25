package model

// FetchStatus is the lifecycle state of a feed's fetch sequence.
type FetchStatus string

const (
	StatusIdle           FetchStatus = "idle"
	StatusLoadingInitial FetchStatus = "loading-initial"
	StatusLoadingMore    FetchStatus = "loading-more"
	StatusSucceeded      FetchStatus = "succeeded"
	StatusFailed         FetchStatus = "failed"
)

// FeedState holds the posts received so far in arrival order together with
// the continuation cursor that produced them.
type FeedState struct {
	Posts  []Post      `json:"posts" yaml:"posts"`
	Cursor string      `json:"cursor,omitempty" yaml:"cursor,omitempty"` // empty: no further pages
	Status FetchStatus `json:"status" yaml:"status"`
	Err    string      `json:"error,omitempty" yaml:"error,omitempty"`
	// Loaded is true once a page was applied under the current filters.
	Loaded bool `json:"loaded" yaml:"loaded"`
}

// HasMore reports whether another page can be requested.
func (s FeedState) HasMore() bool {
	return s.Cursor != ""
}

// Pending reports whether a fetch is in flight.
func (s FeedState) Pending() bool {
	return s.Status == StatusLoadingInitial || s.Status == StatusLoadingMore
}
