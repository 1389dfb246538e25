package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"threadfeed/internal/comments"
	"threadfeed/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// maxPromptRunes bounds the thread text sent to the model.
const maxPromptRunes = 6000

// Summarizer defines the AI summary interface used by commands.
type Summarizer interface {
	// SummarizeThread describes a post and the discussion under it in a few sentences.
	SummarizeThread(ctx context.Context, post model.Post, tree []model.Comment, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIClient{client: c, model: model}
}

func (o *OpenAIClient) SummarizeThread(ctx context.Context, post model.Post, tree []model.Comment, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	sys := fmt.Sprintf(`
		Summarize the discussion thread below, write in %s, return 2–4 sentences.
		Cover what the post asks or shares, then the main positions in the replies.
		Mention disagreement when replies disagree. Plain text, no links.
		`, langOrDefault(language))
	out, err := o.create(ctx, sys, threadPrompt(post, tree, maxPromptRunes))
	if err != nil {
		slog.Error("openai: summarize thread error", "post", post.ID, "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// threadPrompt flattens a thread into indented text, stopping at budget runes.
func threadPrompt(post model.Post, tree []model.Comment, budget int) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Title: %s\nCommunity: %s\n", post.Title, post.Subreddit)
	if body := strings.TrimSpace(post.Body); body != "" {
		fmt.Fprintf(b, "Post: %s\n", body)
	} else if post.URL != "" {
		fmt.Fprintf(b, "Link: %s\n", post.URL)
	}
	b.WriteString("Replies:\n")

	used := len([]rune(b.String()))
	full := false
	comments.Walk(tree, func(c model.Comment, depth int) bool {
		if full {
			return false
		}
		line := fmt.Sprintf("%s- [%d] %s\n", strings.Repeat("  ", comments.DisplayDepth(depth)), c.Score,
			strings.Join(strings.Fields(c.Body), " "))
		n := len([]rune(line))
		if used+n > budget {
			full = true
			return false
		}
		b.WriteString(line)
		used += n
		return true
	})
	return b.String()
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
