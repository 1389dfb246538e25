package model

// MediaKind describes how a post's embedded media should be displayed.
type MediaKind string

const (
	MediaNone         MediaKind = "none"
	MediaNativeVideo  MediaKind = "native-video"
	MediaYouTube      MediaKind = "youtube"
	MediaVimeo        MediaKind = "vimeo"
	MediaExternalLink MediaKind = "external-link"
)

// Media is the resolved embedded-media descriptor of a post.
type Media struct {
	Kind     MediaKind `json:"kind" yaml:"kind"`
	URL      string    `json:"url,omitempty" yaml:"url,omitempty"`
	Width    int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int       `json:"height,omitempty" yaml:"height,omitempty"`
	Duration int       `json:"duration,omitempty" yaml:"duration,omitempty"` // seconds
}

// Post is the canonical representation of a feed entry.
type Post struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Subreddit   string `json:"subreddit" yaml:"subreddit"`
	Score       int    `json:"score" yaml:"score"`
	Ups         int    `json:"ups" yaml:"ups"`
	NumComments int    `json:"num_comments" yaml:"num_comments"`
	Created     int64  `json:"created" yaml:"created"` // unix seconds
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Media       Media  `json:"media" yaml:"media"`
	Permalink   string `json:"permalink" yaml:"permalink"`
}

// HasMedia reports whether the post carries something other than plain text.
func (p Post) HasMedia() bool {
	return p.Media.Kind != "" && p.Media.Kind != MediaNone
}

// RankedPost is a post together with the leaderboard score it was stored with.
type RankedPost struct {
	Post  Post    `json:"post" yaml:"post"`
	Score float64 `json:"score" yaml:"score"`
}
