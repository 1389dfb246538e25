package cmd

import (
	"context"
	"io"
	"time"

	"threadfeed/internal/model"
	"threadfeed/internal/redisclient"
	"threadfeed/internal/storage"

	"github.com/spf13/cobra"
)

var topCmd = &cobra.Command{
	Use:   "top [scope]",
	Short: "Print a collected leaderboard from Redis",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out, err := formatterFor(cmd)
		if err != nil {
			return err
		}
		scope := model.ScopeAll
		if len(cfg.Collector.Scopes) > 0 {
			scope = cfg.Collector.Scopes[0]
		}
		if len(args) == 1 {
			scope = args[0]
		}
		sortName, _ := cmd.Flags().GetString("sort")
		if sortName == "" {
			sortName = cfg.Collector.Sort
		}
		sort, err := model.ParseSort(sortName)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("n")

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewRedisStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ranked, err := store.TopRanked(ctx, scope, sort, n)
		if err != nil {
			return err
		}
		now := time.Now()
		return out.Write(ranked, func(w io.Writer) error {
			return writeRanked(w, ranked, now)
		})
	},
}

func init() {
	addFormatFlag(topCmd)
	topCmd.Flags().String("sort", "", "leaderboard sort mode (default collector.sort)")
	topCmd.Flags().Int("n", 20, "number of entries")
	rootCmd.AddCommand(topCmd)
}
