package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

const pageJSON = `{"kind":"Listing","data":{"after":"t3_second","children":[
	{"kind":"t3","data":{"id":"first","name":"t3_first","title":"Hello","author":"alice","subreddit":"golang",
		"score":42,"ups":50,"num_comments":7,"created_utc":1700000000.0,"thumbnail":"self","is_self":true,
		"selftext":"body","permalink":"/r/golang/comments/first/hello/"}},
	{"kind":"t3","data":{"id":"second","title":"Video","author":null,"subreddit":"golang","is_video":true,
		"media":{"reddit_video":{"fallback_url":"https://v.redd.it/x/DASH_720.mp4","width":1280,"height":720,"duration":12}}}},
	{"kind":"t3","data":"not an object"},
	{"kind":"t5","data":{"id":"community"}}
]}}`

const detailJSON = `[
	{"kind":"Listing","data":{"after":null,"children":[{"kind":"t3","data":{"id":"first","title":"Hello"}}]}},
	{"kind":"Listing","data":{"after":null,"children":[
		{"kind":"t1","data":{"id":"c1","author":"bob","body":"hi","score":3,"created_utc":1700000100,
			"replies":{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c2","author":"[deleted]","body":"[deleted]","replies":""}}]}}}},
		{"kind":"more","data":{"id":"m1","count":12,"children":["c9"]}}
	]}}
]`

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "threadfeed-test", 2*time.Second, 10)
}

func TestFetchPage(t *testing.T) {
	var gotPath, gotUA string
	var gotQuery map[string][]string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(pageJSON))
	})

	page, err := c.FetchPage(context.Background(), "golang", model.SortTop, model.WindowWeek, "t3_prev")
	require.NoError(t, err)

	assert.Equal(t, "/r/golang/top.json", gotPath)
	assert.Equal(t, "threadfeed-test", gotUA)
	assert.Equal(t, []string{"t3_prev"}, gotQuery["after"])
	assert.Equal(t, []string{"week"}, gotQuery["t"])
	assert.Equal(t, []string{"10"}, gotQuery["limit"])

	require.Len(t, page.Posts, 2)
	assert.Equal(t, "t3_second", page.NextCursor)
	assert.Equal(t, "alice", *page.Posts[0].Author)
	assert.Nil(t, page.Posts[1].Author)
	require.NotNil(t, page.Posts[1].Media)
	assert.Equal(t, 720, page.Posts[1].Media.RedditVideo.Height)
}

func TestFetchPageAllScopeOmitsWindowOutsideTop(t *testing.T) {
	var gotPath string
	var hasT bool
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, hasT = r.URL.Query()["t"]
		_, _ = w.Write([]byte(`{"data":{"after":null,"children":[]}}`))
	})
	page, err := c.FetchPage(context.Background(), "all", model.SortHot, model.WindowAll, "")
	require.NoError(t, err)
	assert.Equal(t, "/r/all/hot.json", gotPath)
	assert.False(t, hasT)
	assert.Empty(t, page.Posts)
	assert.Equal(t, "", page.NextCursor)
}

func TestSearchRestrictsToScope(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(pageJSON))
	})
	page, err := c.Search(context.Background(), "generics", "golang", model.SortNew, model.WindowAll, "")
	require.NoError(t, err)
	assert.Equal(t, "/r/golang/search.json", gotPath)
	assert.Equal(t, []string{"generics"}, gotQuery["q"])
	assert.Equal(t, []string{"1"}, gotQuery["restrict_sr"])
	assert.Equal(t, []string{"new"}, gotQuery["sort"])
	assert.Len(t, page.Posts, 2)
}

func TestMalformedListingIsEmptyPage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>rate limited</html>`))
	})
	page, err := c.FetchPage(context.Background(), "golang", model.SortHot, model.WindowAll, "")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, "", page.NextCursor)
}

func TestStatusErrors(t *testing.T) {
	status := http.StatusTooManyRequests
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	_, err := c.FetchPage(context.Background(), "golang", model.SortHot, model.WindowAll, "")
	var fe *source.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, "page", fe.Op)

	status = http.StatusNotFound
	_, err = c.FetchDetail(context.Background(), "golang", "gone")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestFetchDetail(t *testing.T) {
	var gotPath string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(detailJSON))
	})

	d, err := c.FetchDetail(context.Background(), "all", "t3_first")
	require.NoError(t, err)
	assert.Equal(t, "/comments/first.json", gotPath)
	assert.Equal(t, "first", d.Post.ID)
	require.Len(t, d.Comments, 2)
	assert.Equal(t, source.KindComment, d.Comments[0].Kind)
	require.Len(t, d.Comments[0].Data.Replies, 1)
	assert.Equal(t, "c2", d.Comments[0].Data.Replies[0].Data.ID)
	assert.Equal(t, source.KindMore, d.Comments[1].Kind)

	_, err = c.FetchDetail(context.Background(), "golang", "first")
	require.NoError(t, err)
	assert.Equal(t, "/r/golang/comments/first.json", gotPath)
}

func TestFetchDetailWithoutPostIsNotFound(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"kind":"Listing","data":{"children":[]}}]`))
	})
	_, err := c.FetchDetail(context.Background(), "golang", "x")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", time.Second, 0)
	_, err := c.FetchPage(context.Background(), "golang", model.SortHot, model.WindowAll, "")
	var fe *source.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.Status)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageJSON))
	})
	c.maxBody = 64

	_, err := c.FetchPage(context.Background(), "golang", model.SortHot, model.WindowAll, "")
	var fe *source.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "page", fe.Op)
	assert.Contains(t, err.Error(), "exceeds 64 bytes")

	c.maxBody = int64(len(pageJSON))
	page, err := c.FetchPage(context.Background(), "golang", model.SortHot, model.WindowAll, "")
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
}
