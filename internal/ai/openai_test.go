package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadfeed/internal/model"
)

func sampleThread() (model.Post, []model.Comment) {
	post := model.Post{ID: "p1", Title: "Is context.Context overused?", Subreddit: "golang", Body: "Asking for a friend."}
	tree := []model.Comment{
		{ID: "c1", Body: "Only pass it to blocking calls.", Score: 12, Replies: []model.Comment{
			{ID: "c2", Body: "And  never\nstore it.", Score: 4, Replies: []model.Comment{}},
		}},
		{ID: "c3", Body: "Disagree, it is fine.", Score: -1, Replies: []model.Comment{}},
	}
	return post, tree
}

func TestThreadPrompt(t *testing.T) {
	post, tree := sampleThread()
	got := threadPrompt(post, tree, maxPromptRunes)

	assert.Contains(t, got, "Title: Is context.Context overused?")
	assert.Contains(t, got, "Post: Asking for a friend.")
	assert.Contains(t, got, "- [12] Only pass it to blocking calls.\n  - [4] And never store it.\n- [-1] Disagree")
}

func TestThreadPromptRespectsBudget(t *testing.T) {
	post, tree := sampleThread()
	head := threadPrompt(post, nil, maxPromptRunes)
	got := threadPrompt(post, tree, len([]rune(head))+40)

	assert.Contains(t, got, "Only pass it")
	assert.NotContains(t, got, "never store")
	assert.NotContains(t, got, "Disagree")
}

func TestSummarizeThread(t *testing.T) {
	var gotModel, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotModel = req.Model
		gotUser = req.Messages[len(req.Messages)-1].Content
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  People argue about context.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "test", Model: "gpt-test", BaseURL: srv.URL + "/v1"})
	post, tree := sampleThread()
	out, err := c.SummarizeThread(context.Background(), post, tree, "")
	require.NoError(t, err)

	assert.Equal(t, "People argue about context.", out)
	assert.Equal(t, "gpt-test", gotModel)
	assert.Contains(t, gotUser, "Only pass it to blocking calls.")
}
