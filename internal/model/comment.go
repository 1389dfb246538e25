package model

// Comment is a node of a post's reply tree. Depth is not stored; it is
// derived from the node's position when the tree is walked.
type Comment struct {
	ID      string    `json:"id" yaml:"id"`
	Author  string    `json:"author" yaml:"author"` // empty for deleted accounts
	Body    string    `json:"body" yaml:"body"`
	Created int64     `json:"created" yaml:"created"`
	Score   int       `json:"score" yaml:"score"`
	Replies []Comment `json:"replies" yaml:"replies"`
}
