package feed

import (
	"context"
	"errors"
	"sync"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

type reply struct {
	page source.Page
	err  error
}

// scriptedSource answers queries immediately from a queue of replies.
type scriptedSource struct {
	mu      sync.Mutex
	replies []reply
	queries []source.Query
	detail  source.Detail
	dErr    error
}

func (s *scriptedSource) push(page source.Page, err error) *scriptedSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, reply{page: page, err: err})
	return s
}

func (s *scriptedSource) next(q source.Query) (source.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if len(s.replies) == 0 {
		return source.Page{}, errors.New("scripted source: no reply queued")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.page, r.err
}

func (s *scriptedSource) recorded() []source.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]source.Query(nil), s.queries...)
}

func (s *scriptedSource) FetchPage(_ context.Context, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	return s.next(source.Query{Scope: scope, Sort: sort, Window: window, Cursor: cursor})
}

func (s *scriptedSource) Search(_ context.Context, query, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	return s.next(source.Query{Query: query, Scope: scope, Sort: sort, Window: window, Cursor: cursor})
}

func (s *scriptedSource) FetchDetail(_ context.Context, _, _ string) (source.Detail, error) {
	return s.detail, s.dErr
}

// gatedCall is a request held by gatedSource until the test replies.
type gatedCall struct {
	q     source.Query
	reply chan reply
}

func (c *gatedCall) resolve(page source.Page, err error) {
	c.reply <- reply{page: page, err: err}
}

// gatedSource blocks every request until the test resolves it, so tests
// control the order in which responses arrive. It ignores cancellation to
// model responses that arrive late.
type gatedSource struct {
	calls chan *gatedCall
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan *gatedCall, 8)}
}

func (s *gatedSource) wait(q source.Query) (source.Page, error) {
	c := &gatedCall{q: q, reply: make(chan reply, 1)}
	s.calls <- c
	r := <-c.reply
	return r.page, r.err
}

func (s *gatedSource) FetchPage(_ context.Context, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	return s.wait(source.Query{Scope: scope, Sort: sort, Window: window, Cursor: cursor})
}

func (s *gatedSource) Search(_ context.Context, query, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	return s.wait(source.Query{Query: query, Scope: scope, Sort: sort, Window: window, Cursor: cursor})
}

func (s *gatedSource) FetchDetail(context.Context, string, string) (source.Detail, error) {
	return source.Detail{}, source.ErrNotFound
}

func rawPosts(ids ...string) []source.RawPost {
	out := make([]source.RawPost, len(ids))
	for i, id := range ids {
		out[i] = source.RawPost{ID: id, Title: "post " + id, Subreddit: "golang"}
	}
	return out
}

func postIDs(posts []model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
