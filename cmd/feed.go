package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadfeed/internal/feed"
	"threadfeed/internal/model"

	"github.com/spf13/cobra"
)

// feedOutput is the structured result of the feed command.
type feedOutput struct {
	Filters model.FilterState `json:"filters" yaml:"filters"`
	Posts   []model.Post      `json:"posts" yaml:"posts"`
	Next    string            `json:"next,omitempty" yaml:"next,omitempty"`
}

var feedCmd = &cobra.Command{
	Use:   "feed [scope]",
	Short: "Fetch a feed and print it ranked",
	Args:  cobra.MaximumNArgs(1),
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
		mode, err := feedMode(cfg)
		if err != nil {
			return err
		}
		filters, err := configuredFilters(cfg)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			filters.Scope = args[0]
		}
		if err := applyFilterFlags(cmd, &filters); err != nil {
			return err
		}
		pages, _ := cmd.Flags().GetInt("pages")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl := feed.NewController(src, mode, filters)
		if err := loadPages(ctx, ctrl, filters, pages); err != nil {
			return err
		}

		now := time.Now()
		posts := ctrl.View(now)
		st := ctrl.State()
		return out.Write(feedOutput{Filters: ctrl.Filters(), Posts: posts, Next: st.Cursor}, func(w io.Writer) error {
			f := ctrl.Filters()
			fmt.Fprintf(w, "r/%s · %s", f.Scope, f.Sort)
			if f.Sort == model.SortTop {
				fmt.Fprintf(w, " · %s", f.EffectiveWindow())
			}
			if f.Query != "" {
				fmt.Fprintf(w, " · %q", f.Query)
			}
			fmt.Fprintf(w, " · %d posts\n\n", len(posts))
			return writePosts(w, posts, now)
		})
	},
}

// loadPages fetches the first page and up to pages-1 further pages. A failed
// follow-up page keeps what was loaded and is only logged.
func loadPages(ctx context.Context, ctrl *feed.Controller, filters model.FilterState, pages int) error {
	if err := ctrl.FetchFirstPage(ctx, filters); err != nil {
		return err
	}
	for i := 1; i < pages; i++ {
		err := ctrl.FetchNextPage(ctx)
		if errors.Is(err, feed.ErrNoMorePages) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "stopped after %d pages: %v\n", i, err)
			return nil
		}
	}
	return nil
}

func init() {
	addFilterFlags(feedCmd)
	addFormatFlag(feedCmd)
	feedCmd.Flags().Int("pages", 1, "number of pages to load")
	rootCmd.AddCommand(feedCmd)
}
