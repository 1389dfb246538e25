// Package comments turns raw nested reply listings into canonical comment
// trees. All traversals use an explicit stack so thread depth is unbounded.
package comments

import (
	"strings"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

// MaxDisplayDepth is the deepest indentation level a renderer should use.
// Deeper nodes keep their true position in the tree.
const MaxDisplayDepth = 8

type buildTask struct {
	raw []source.RawCommentNode
	dst *[]model.Comment
}

// Build converts raw reply nodes into a comment tree. Non-comment entries
// such as "more" stubs and comments without an id are dropped together with
// their replies; sibling order is preserved.
func Build(raw []source.RawCommentNode) []model.Comment {
	roots := []model.Comment{}
	stack := []buildTask{{raw: raw, dst: &roots}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := 0
		for _, node := range t.raw {
			if keep(node) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		// out is sized exactly so the Replies pointers taken below stay valid.
		out := make([]model.Comment, 0, n)
		for _, node := range t.raw {
			if keep(node) {
				out = append(out, convert(node.Data))
			}
		}
		*t.dst = out

		i := 0
		for _, node := range t.raw {
			if !keep(node) {
				continue
			}
			if len(node.Data.Replies) > 0 {
				stack = append(stack, buildTask{raw: node.Data.Replies, dst: &out[i].Replies})
			}
			i++
		}
	}
	return roots
}

func keep(node source.RawCommentNode) bool {
	return node.Kind == source.KindComment && strings.TrimSpace(node.Data.ID) != ""
}

func convert(c source.RawComment) model.Comment {
	out := model.Comment{
		ID:      c.ID,
		Body:    c.Body,
		Created: int64(c.CreatedUTC),
		Score:   c.Score,
		Replies: []model.Comment{},
	}
	if c.Author != nil {
		out.Author = *c.Author
	}
	return out
}

// CountAll returns the number of comments in the forest, descendants included.
func CountAll(comments []model.Comment) int {
	total := 0
	stack := [][]model.Comment{comments}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total += len(level)
		for i := range level {
			if len(level[i].Replies) > 0 {
				stack = append(stack, level[i].Replies)
			}
		}
	}
	return total
}

type walkItem struct {
	c     *model.Comment
	depth int
}

// Walk visits every comment depth-first in display order, passing its true
// depth (0 for top-level comments). Returning false from fn skips the
// comment's replies.
func Walk(comments []model.Comment, fn func(c model.Comment, depth int) bool) {
	stack := make([]walkItem, 0, len(comments))
	for i := len(comments) - 1; i >= 0; i-- {
		stack = append(stack, walkItem{c: &comments[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(*it.c, it.depth) {
			continue
		}
		replies := it.c.Replies
		for i := len(replies) - 1; i >= 0; i-- {
			stack = append(stack, walkItem{c: &replies[i], depth: it.depth + 1})
		}
	}
}

// DisplayDepth caps a tree depth for rendering.
func DisplayDepth(depth int) int {
	return min(depth, MaxDisplayDepth)
}
