package cmd

import (
	"context"
	"fmt"
	"time"

	"threadfeed/internal/config"
	"threadfeed/internal/model"
	"threadfeed/internal/redisclient"
	"threadfeed/internal/storage"
	"threadfeed/worker"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest [scope...]",
	Short: "Render collected leaderboards into Markdown digests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		sortName, _ := cmd.Flags().GetString("sort")
		if sortName == "" {
			sortName = cfg.Collector.Sort
		}
		sort, err := model.ParseSort(sortName)
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			cfg.Digest.OutputDir = dir
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		b, err := newDigestBuilder(cfg, storage.NewRedisStore(rdb), sort)
		if err != nil {
			return err
		}
		scopes := args
		if len(scopes) == 0 {
			scopes = b.Scopes
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, scope := range scopes {
			path, written, err := b.Write(ctx, scope)
			if err != nil {
				return err
			}
			status := "written"
			if !written {
				status = "skipped (unchanged or too few posts)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, status)
		}
		return nil
	},
}

func newDigestBuilder(cfg config.Config, store worker.RankSource, sort model.SortMode) (*worker.DigestBuilder, error) {
	interval, err := config.Duration("digest.interval", cfg.Digest.Interval)
	if err != nil {
		return nil, err
	}
	return &worker.DigestBuilder{
		Store:         store,
		Scopes:        cfg.Collector.Scopes,
		Sort:          sort,
		TopN:          cfg.Digest.TopN,
		MinItems:      cfg.Digest.MinItems,
		OutputDir:     cfg.Digest.OutputDir,
		TitleTemplate: cfg.Digest.Title,
		BaseURL:       cfg.Source.BaseURL,
		Interval:      interval,
	}, nil
}

func init() {
	digestCmd.Flags().String("sort", "", "leaderboard sort mode (default collector.sort)")
	digestCmd.Flags().String("out", "", "output directory (default digest.output_dir)")
	rootCmd.AddCommand(digestCmd)
}
