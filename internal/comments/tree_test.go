package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

func node(id string, replies ...source.RawCommentNode) source.RawCommentNode {
	author := "user_" + id
	return source.RawCommentNode{
		Kind: source.KindComment,
		Data: source.RawComment{ID: id, Author: &author, Body: "body " + id, Replies: replies},
	}
}

func more(id string) source.RawCommentNode {
	return source.RawCommentNode{Kind: source.KindMore, Data: source.RawComment{ID: id}}
}

func TestBuildPreservesOrderAndDropsMore(t *testing.T) {
	raw := []source.RawCommentNode{
		node("a", node("a1"), more("m1"), node("a2", node("a2x"))),
		more("m0"),
		node("b"),
	}
	tree := Build(raw)

	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].ID)
	assert.Equal(t, "b", tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "a1", tree[0].Replies[0].ID)
	assert.Equal(t, "a2", tree[0].Replies[1].ID)
	require.Len(t, tree[0].Replies[1].Replies, 1)
	assert.Equal(t, "a2x", tree[0].Replies[1].Replies[0].ID)
	assert.Empty(t, tree[1].Replies)
	assert.Equal(t, "user_a2x", tree[0].Replies[1].Replies[0].Author)
}

func TestBuildNullAuthor(t *testing.T) {
	tree := Build([]source.RawCommentNode{{Kind: source.KindComment, Data: source.RawComment{ID: "x", Body: "[removed]"}}})
	require.Len(t, tree, 1)
	assert.Equal(t, "", tree[0].Author)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.Empty(t, Build([]source.RawCommentNode{more("m")}))
}

func TestCountAllThreeLevels(t *testing.T) {
	tree := Build([]source.RawCommentNode{
		node("root", node("c1", node("g1")), node("c2")),
	})
	assert.Equal(t, 4, CountAll(tree))
	assert.Equal(t, 1, len(tree))
}

func TestDeepThreadDoesNotOverflow(t *testing.T) {
	const depth = 50000
	leaf := node("leaf")
	for i := 0; i < depth; i++ {
		leaf = node("n", leaf)
	}
	tree := Build([]source.RawCommentNode{leaf})
	assert.Equal(t, depth+1, CountAll(tree))

	maxSeen := 0
	Walk(tree, func(c model.Comment, d int) bool {
		maxSeen = max(maxSeen, d)
		return true
	})
	assert.Equal(t, depth, maxSeen)
	assert.Equal(t, MaxDisplayDepth, DisplayDepth(maxSeen))
}

func TestWalkOrderAndSkip(t *testing.T) {
	tree := Build([]source.RawCommentNode{
		node("a", node("a1", node("a1x")), node("a2")),
		node("b", node("b1")),
	})
	var got []string
	var depths []int
	Walk(tree, func(c model.Comment, d int) bool {
		got = append(got, c.ID)
		depths = append(depths, d)
		return c.ID != "b"
	})
	assert.Equal(t, []string{"a", "a1", "a1x", "a2", "b"}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
}

func TestBuildDropsCommentsWithoutID(t *testing.T) {
	raw := []source.RawCommentNode{
		node("a", node(" ", node("orphan")), node("a1")),
		node(""),
		node("b"),
	}
	tree := Build(raw)

	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].ID)
	assert.Equal(t, "b", tree[1].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "a1", tree[0].Replies[0].ID)
	assert.Equal(t, 3, CountAll(tree))
}
