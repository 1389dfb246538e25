package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "threadfeed/1.0"
	DefaultPageSize  = 25

	// MaxBodyBytes bounds a single response body.
	MaxBodyBytes = 16 << 20
)

// Client reads public Reddit JSON listings. It implements source.Source.
type Client struct {
	baseURL   string
	userAgent string
	pageSize  int
	maxBody   int64
	client    *http.Client
}

var _ source.Source = (*Client)(nil)

// NewClient creates a client. Empty or zero arguments fall back to defaults.
func NewClient(baseURL, userAgent string, timeout time.Duration, pageSize int) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		pageSize:  pageSize,
		maxBody:   MaxBodyBytes,
		client:    &http.Client{Timeout: timeout},
	}
}

// listing mirrors the Reddit Listing envelope.
type listing struct {
	Data struct {
		After    *string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchPage loads one page of a community listing.
// API: GET /r/{scope}/{sort}.json?limit=&after=&t=
func (c *Client) FetchPage(ctx context.Context, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	q := c.pageValues(cursor)
	if sort == model.SortTop {
		q.Set("t", string(window))
	}
	path := fmt.Sprintf("%s/%s.json", scopePath(scope), url.PathEscape(string(sort)))
	body, err := c.get(ctx, "page", path, q)
	if err != nil {
		return source.Page{}, err
	}
	return decodePage("page", body), nil
}

// Search runs a query, restricted to scope unless scope is "all".
// API: GET /r/{scope}/search.json?q=&sort=&t=&restrict_sr=1
func (c *Client) Search(ctx context.Context, query, scope string, sort model.SortMode, window model.TimeWindow, cursor string) (source.Page, error) {
	q := c.pageValues(cursor)
	q.Set("q", query)
	q.Set("sort", string(sort))
	q.Set("t", string(window))
	if !isAll(scope) {
		q.Set("restrict_sr", "1")
	}
	body, err := c.get(ctx, "search", scopePath(scope)+"/search.json", q)
	if err != nil {
		return source.Page{}, err
	}
	return decodePage("search", body), nil
}

// FetchDetail loads a post and its comment tree.
// API: GET /r/{scope}/comments/{id}.json, or /comments/{id}.json for "all"
func (c *Client) FetchDetail(ctx context.Context, scope, postID string) (source.Detail, error) {
	postID = strings.TrimPrefix(strings.TrimSpace(postID), "t3_")
	if postID == "" {
		return source.Detail{}, source.ErrNotFound
	}
	q := url.Values{"raw_json": {"1"}}
	path := fmt.Sprintf("/comments/%s.json", url.PathEscape(postID))
	if !isAll(scope) {
		path = scopePath(scope) + path
	}
	body, err := c.get(ctx, "detail", path, q)
	if err != nil {
		return source.Detail{}, err
	}

	var parts []listing
	if err := json.Unmarshal(body, &parts); err != nil {
		slog.Warn("reddit: malformed detail response", "id", postID, "error", err)
		return source.Detail{}, source.ErrNotFound
	}
	if len(parts) == 0 {
		return source.Detail{}, source.ErrNotFound
	}
	var d source.Detail
	found := false
	for _, ch := range parts[0].Data.Children {
		if ch.Kind != source.KindPost {
			continue
		}
		if err := json.Unmarshal(ch.Data, &d.Post); err == nil {
			found = true
			break
		}
	}
	if !found {
		return source.Detail{}, source.ErrNotFound
	}
	if len(parts) > 1 {
		d.Comments = make([]source.RawCommentNode, 0, len(parts[1].Data.Children))
		for _, ch := range parts[1].Data.Children {
			var data source.RawComment
			if err := json.Unmarshal(ch.Data, &data); err != nil {
				slog.Warn("reddit: skipping malformed comment", "post", postID, "error", err)
				continue
			}
			d.Comments = append(d.Comments, source.RawCommentNode{Kind: ch.Kind, Data: data})
		}
	}
	return d, nil
}

func (c *Client) pageValues(cursor string) url.Values {
	q := url.Values{
		"limit":    {strconv.Itoa(c.pageSize)},
		"raw_json": {"1"},
	}
	if cursor != "" {
		q.Set("after", cursor)
	}
	return q
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &source.FetchError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &source.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, source.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &source.FetchError{Op: op, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &source.FetchError{Op: op, Err: err}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &source.FetchError{Op: op, Err: fmt.Errorf("response body exceeds %d bytes", c.maxBody)}
	}
	return body, nil
}

// decodePage treats an undecodable body as an empty final page.
func decodePage(op string, body []byte) source.Page {
	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		slog.Warn("reddit: malformed listing", "op", op, "error", err)
		return source.Page{}
	}
	page := source.Page{Posts: make([]source.RawPost, 0, len(l.Data.Children))}
	for _, ch := range l.Data.Children {
		if ch.Kind != source.KindPost {
			continue
		}
		var p source.RawPost
		if err := json.Unmarshal(ch.Data, &p); err != nil {
			slog.Warn("reddit: skipping malformed post", "op", op, "error", err)
			continue
		}
		page.Posts = append(page.Posts, p)
	}
	if l.Data.After != nil {
		page.NextCursor = *l.Data.After
	}
	return page
}

func isAll(scope string) bool {
	s := strings.TrimSpace(scope)
	return s == "" || strings.EqualFold(s, model.ScopeAll)
}

// scopePath returns the path prefix of a community; "all" maps to the
// site-wide listing.
func scopePath(scope string) string {
	if isAll(scope) {
		return "/r/all"
	}
	return "/r/" + url.PathEscape(strings.TrimSpace(scope))
}
