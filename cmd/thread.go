package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"threadfeed/internal/ai"
	"threadfeed/internal/feed"
	"threadfeed/internal/model"
	"threadfeed/internal/redisclient"
	"threadfeed/internal/storage"

	"github.com/spf13/cobra"
)

// summaryCache stores generated thread summaries.
type summaryCache interface {
	GetSummary(ctx context.Context, postID string) (string, error)
	SetSummary(ctx context.Context, postID, summary string) error
}

// threadOutput is the structured result of the thread command.
type threadOutput struct {
	feed.Detail `yaml:",inline"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

var threadCmd = &cobra.Command{
	Use:   "thread <post-id>",
	Short: "Print a post with its comment tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out, err := formatterFor(cmd)
		if err != nil {
			return err
		}
		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		scope, _ := cmd.Flags().GetString("scope")
		summarizeFlag, _ := cmd.Flags().GetBool("summarize")
		lang, _ := cmd.Flags().GetString("lang")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		d, err := feed.LoadDetail(ctx, src, scope, args[0])
		if err != nil {
			return err
		}

		res := threadOutput{Detail: d}
		if summarizeFlag {
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("thread: --summarize needs openai.api_key")
			}
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			s := ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
			res.Summary, err = summarize(ctx, storage.NewRedisStore(rdb), s, d, lang)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		return out.Write(res, func(w io.Writer) error {
			if res.Summary != "" {
				fmt.Fprintf(w, "Summary: %s\n\n", res.Summary)
			}
			return writeThread(w, res.Detail, now)
		})
	},
}

// summarize returns a cached summary of d or generates and caches one. Cache
// failures are logged and do not fail the command.
func summarize(ctx context.Context, cache summaryCache, s ai.Summarizer, d feed.Detail, lang string) (string, error) {
	cached, err := cache.GetSummary(ctx, d.Post.ID)
	if err != nil {
		slog.Warn("thread: summary cache unavailable", "post", d.Post.ID, "error", err)
	}
	if cached != "" {
		slog.Debug("thread: summary cache hit", "post", d.Post.ID)
		return cached, nil
	}
	sum, err := s.SummarizeThread(ctx, d.Post, d.Comments, lang)
	if err != nil {
		return "", fmt.Errorf("thread: summarize %s: %w", d.Post.ID, err)
	}
	if sum == "" {
		return "", nil
	}
	if err := cache.SetSummary(ctx, d.Post.ID, sum); err != nil {
		slog.Warn("thread: summary not cached", "post", d.Post.ID, "error", err)
	}
	return sum, nil
}

func init() {
	addFormatFlag(threadCmd)
	threadCmd.Flags().String("scope", model.ScopeAll, "community the post belongs to")
	threadCmd.Flags().Bool("summarize", false, "summarize the thread with OpenAI")
	threadCmd.Flags().String("lang", "", "summary language (default English)")
	rootCmd.AddCommand(threadCmd)
}
