package feed

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadfeed/internal/source"
)

func TestLoadDetailBuildsTree(t *testing.T) {
	var nodes []source.RawCommentNode
	require.NoError(t, json.Unmarshal([]byte(`[
		{"kind":"t1","data":{"id":"c1","author":"ann","body":"first","score":3,"created_utc":10,
			"replies":{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"c2","author":null,"body":"[deleted]","replies":""}},
				{"kind":"more","data":{"id":"m1"}}
			]}}}},
		{"kind":"t1","data":{"id":"c3","author":"bob","body":"second","replies":""}}
	]`), &nodes))

	src := &scriptedSource{detail: source.Detail{
		Post:     source.RawPost{ID: "p1", Title: "Generics in practice", IsSelf: true},
		Comments: nodes,
	}}
	d, err := LoadDetail(context.Background(), src, "golang", "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", d.Post.ID)
	assert.Equal(t, 2, d.TopLevel)
	assert.Equal(t, 3, d.Total)
	require.Len(t, d.Comments[0].Replies, 1)
	assert.Equal(t, "", d.Comments[0].Replies[0].Author)
	assert.Equal(t, "c3", d.Comments[1].ID)
}

func TestLoadDetailNotFound(t *testing.T) {
	src := &scriptedSource{dErr: source.ErrNotFound}
	_, err := LoadDetail(context.Background(), src, "golang", "gone")
	assert.ErrorIs(t, err, source.ErrNotFound)

	src = &scriptedSource{detail: source.Detail{Post: source.RawPost{Title: "no id"}}}
	_, err = LoadDetail(context.Background(), src, "golang", "p1")
	assert.ErrorIs(t, err, source.ErrNotFound)
}
