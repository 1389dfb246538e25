package source

import (
	"bytes"
	"encoding/json"
)

// Kinds of listing children.
const (
	KindComment = "t1"
	KindPost    = "t3"
	KindMore    = "more"
)

// RawVideo is an embedded native video asset.
type RawVideo struct {
	FallbackURL string `json:"fallback_url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Duration    int    `json:"duration"`
}

// RawMedia is the embedded media descriptor of a raw post.
type RawMedia struct {
	RedditVideo *RawVideo `json:"reddit_video,omitempty"`
}

// RawPost mirrors the subset of post fields the engine consumes. Every
// field is optional on the wire.
type RawPost struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Title       string    `json:"title"`
	Author      *string   `json:"author,omitempty"`
	Subreddit   string    `json:"subreddit"`
	Score       int       `json:"score"`
	Ups         int       `json:"ups"`
	NumComments int       `json:"num_comments"`
	CreatedUTC  float64   `json:"created_utc"`
	Selftext    string    `json:"selftext,omitempty"`
	IsSelf      bool      `json:"is_self,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	URL         string    `json:"url,omitempty"`
	Permalink   string    `json:"permalink"`
	IsVideo     bool      `json:"is_video,omitempty"`
	Media       *RawMedia `json:"media,omitempty"`
	SecureMedia *RawMedia `json:"secure_media,omitempty"`
}

// RawComment is the data of a t1 node.
type RawComment struct {
	ID         string     `json:"id"`
	Author     *string    `json:"author,omitempty"`
	Body       string     `json:"body"`
	Score      int        `json:"score"`
	CreatedUTC float64    `json:"created_utc"`
	Replies    RawReplies `json:"replies,omitempty"`
}

// RawCommentNode is one child of a comment listing. Kind is KindComment for
// comments and KindMore for truncated-branch stubs.
type RawCommentNode struct {
	Kind string     `json:"kind"`
	Data RawComment `json:"data"`
}

// RawReplies is the nested reply payload of a comment. On the wire it is
// either an empty string or a listing of further nodes.
type RawReplies []RawCommentNode

func (r *RawReplies) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*r = nil
		return nil
	}
	var l struct {
		Data struct {
			Children []RawCommentNode `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*r = l.Data.Children
	return nil
}

func (r RawReplies) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte(`""`), nil
	}
	l := map[string]any{
		"kind": "Listing",
		"data": map[string]any{"children": []RawCommentNode(r)},
	}
	return json.Marshal(l)
}
