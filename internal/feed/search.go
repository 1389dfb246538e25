package feed

import (
	"context"
	"strings"
	"time"

	"threadfeed/internal/debounce"
	"threadfeed/internal/model"
)

// DefaultSearchDelay is the quiet period before typed input triggers a fetch.
const DefaultSearchDelay = 300 * time.Millisecond

// SearchInput feeds free-text query input into a Controller. Typed input is
// debounced; Submit fetches immediately.
type SearchInput struct {
	ctx    context.Context
	ctrl   *Controller
	deb    *debounce.Debouncer
	onDone func(query string, err error)
}

// NewSearchInput binds a search input to c. onDone, if set, receives the
// outcome of every debounced fetch.
func NewSearchInput(ctx context.Context, c *Controller, delay time.Duration, onDone func(query string, err error)) *SearchInput {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchInput{ctx: ctx, ctrl: c, deb: debounce.New(delay), onDone: onDone}
}

// Type records new query text; the fetch runs once input is stable.
func (s *SearchInput) Type(query string) {
	s.deb.Trigger(func() {
		err := s.apply(s.ctx, query)
		if s.onDone != nil {
			s.onDone(query, err)
		}
	})
}

// Submit drops any pending typed input and fetches query right away.
func (s *SearchInput) Submit(ctx context.Context, query string) error {
	s.deb.Stop()
	return s.apply(ctx, query)
}

// Close drops pending typed input.
func (s *SearchInput) Close() {
	s.deb.Stop()
}

func (s *SearchInput) apply(ctx context.Context, query string) error {
	return s.ctrl.Update(ctx, func(f *model.FilterState) {
		f.Query = strings.TrimSpace(query)
	})
}
