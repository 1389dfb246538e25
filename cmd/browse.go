package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"threadfeed/internal/config"
	"threadfeed/internal/feed"
	"threadfeed/internal/model"
	"threadfeed/internal/redisclient"
	"threadfeed/internal/source"
	"threadfeed/internal/storage"

	"github.com/spf13/cobra"
)

// filterStore persists the filters of a browsing profile.
type filterStore interface {
	SaveFilters(ctx context.Context, profile string, f model.FilterState) error
	LoadFilters(ctx context.Context, profile string) (model.FilterState, bool, error)
}

const browseHelp = `commands:
  list               print the feed
  more               load the next page
  sort <mode>        hot, new, top or rising
  window <w>         hour, day, week, month, year or all
  scope <name>       community name or all
  type <text>        search as you type (applied after a pause)
  search <text>      search now
  clear              drop the search query
  show <post-id>     print a thread
  filters            print the active filters
  quit`

// browser drives a feed controller from line commands.
type browser struct {
	src     source.Source
	ctrl    *feed.Controller
	search  *feed.SearchInput
	store   filterStore // nil disables persistence
	profile string
	now     func() time.Time

	mu  sync.Mutex // guards out
	out io.Writer
}

func newBrowser(ctx context.Context, src source.Source, mode feed.Mode, filters model.FilterState, debounce time.Duration, out io.Writer) *browser {
	b := &browser{
		src:  src,
		ctrl: feed.NewController(src, mode, filters),
		now:  time.Now,
		out:  out,
	}
	b.search = feed.NewSearchInput(ctx, b.ctrl, debounce, func(query string, err error) {
		if b.report(err) {
			return
		}
		b.persist(ctx)
		b.printf("results for %q:\n", query)
		b.list()
	})
	return b
}

func (b *browser) printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.out, format, args...)
}

func (b *browser) list() {
	posts := b.ctrl.View(b.now())
	st := b.ctrl.State()
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = writePosts(b.out, posts, b.now())
	if st.Status == model.StatusFailed {
		fmt.Fprintf(b.out, "last request failed: %s\n", st.Err)
	}
	if !st.HasMore() && st.Loaded {
		fmt.Fprintln(b.out, "(end of feed)")
	}
}

// report prints err unless it is nil or a discarded stale response. It
// reports whether the caller should stop.
func (b *browser) report(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, feed.ErrStaleResponse):
		return true
	default:
		b.printf("error: %v\n", err)
		return true
	}
}

func (b *browser) persist(ctx context.Context) {
	if b.store == nil {
		return
	}
	if err := b.store.SaveFilters(ctx, b.profile, b.ctrl.Filters()); err != nil {
		slog.Warn("browse: filters not saved", "profile", b.profile, "error", err)
	}
}

func (b *browser) update(ctx context.Context, fn func(f *model.FilterState)) {
	if b.report(b.ctrl.Update(ctx, fn)) {
		return
	}
	b.persist(ctx)
	b.list()
}

// handle executes one command line. It returns false when browsing should end.
func (b *browser) handle(ctx context.Context, line string) bool {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "", "list", "ls":
		b.list()
	case "more", "m":
		err := b.ctrl.FetchNextPage(ctx)
		if errors.Is(err, feed.ErrNoMorePages) {
			b.printf("(end of feed)\n")
			return true
		}
		if !b.report(err) {
			b.list()
		}
	case "sort":
		mode, err := model.ParseSort(arg)
		if b.report(err) {
			return true
		}
		b.update(ctx, func(f *model.FilterState) { f.Sort = mode })
	case "window":
		w, err := model.ParseWindow(arg)
		if b.report(err) {
			return true
		}
		b.update(ctx, func(f *model.FilterState) { f.Window = w })
	case "scope":
		if arg == "" {
			arg = model.ScopeAll
		}
		b.update(ctx, func(f *model.FilterState) { f.Scope = arg })
	case "type":
		b.search.Type(arg)
	case "search", "/":
		if b.report(b.search.Submit(ctx, arg)) {
			return true
		}
		b.persist(ctx)
		b.list()
	case "clear":
		if b.report(b.search.Submit(ctx, "")) {
			return true
		}
		b.persist(ctx)
		b.list()
	case "show":
		if arg == "" {
			b.printf("usage: show <post-id>\n")
			return true
		}
		d, err := feed.LoadDetail(ctx, b.src, b.ctrl.Filters().Scope, arg)
		if b.report(err) {
			return true
		}
		b.mu.Lock()
		_ = writeThread(b.out, d, b.now())
		b.mu.Unlock()
	case "filters":
		f := b.ctrl.Filters()
		b.printf("scope=%s sort=%s window=%s (effective %s) query=%q\n",
			f.Scope, f.Sort, f.Window, f.EffectiveWindow(), f.Query)
	case "help", "?":
		b.printf("%s\n", browseHelp)
	case "quit", "q", "exit":
		return false
	default:
		b.printf("unknown command %q, try help\n", verb)
	}
	return true
}

// run loads the first page and reads commands until EOF or quit.
func (b *browser) run(ctx context.Context, in io.Reader) error {
	defer b.search.Close()
	if !b.report(b.ctrl.FetchFirstPage(ctx, b.ctrl.Filters())) {
		b.list()
	}
	sc := bufio.NewScanner(in)
	for {
		b.printf("> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if !b.handle(ctx, sc.Text()) {
			return nil
		}
	}
}

var browseCmd = &cobra.Command{
	Use:   "browse [scope]",
	Short: "Browse a feed interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		mode, err := feedMode(cfg)
		if err != nil {
			return err
		}
		delay, err := config.Duration("feed.debounce", cfg.Feed.Debounce)
		if err != nil {
			return err
		}
		filters, err := configuredFilters(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var store filterStore
		if cfg.App.Profile != "" {
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			rs := storage.NewRedisStore(rdb)
			saved, ok, err := rs.LoadFilters(ctx, cfg.App.Profile)
			switch {
			case err != nil:
				slog.Warn("browse: saved filters unavailable", "profile", cfg.App.Profile, "error", err)
			case ok:
				filters = saved
			}
			store = rs
		}
		if len(args) == 1 {
			filters.Scope = args[0]
		}
		if err := applyFilterFlags(cmd, &filters); err != nil {
			return err
		}

		b := newBrowser(ctx, src, mode, filters, delay, cmd.OutOrStdout())
		b.store = store
		b.profile = cfg.App.Profile
		return b.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	addFilterFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}
