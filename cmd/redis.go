package cmd

import (
	"context"
	"io"
	"time"

	"threadfeed/internal/redisclient"
	"threadfeed/internal/storage"

	"github.com/spf13/cobra"
)

// redisCmd groups Redis-related subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities for leaderboards, saved filters and summaries",
}

// filtersCmd prints the filters saved for a browsing profile.
var filtersCmd = &cobra.Command{
	Use:   "filters [profile]",
	Short: "Print the saved browse filters of a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out, err := formatterFor(cmd)
		if err != nil {
			return err
		}
		profile := cfg.App.Profile
		if len(args) == 1 {
			profile = args[0]
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		f, ok, err := storage.NewRedisStore(rdb).LoadFilters(ctx, profile)
		if err != nil {
			return err
		}
		return out.Write(f, func(w io.Writer) error {
			if !ok {
				_, err := io.WriteString(w, "no saved filters\n")
				return err
			}
			_, err := io.WriteString(w, "scope="+f.Scope+" sort="+string(f.Sort)+" window="+string(f.Window)+" query="+f.Query+"\n")
			return err
		})
	},
}

func init() {
	addFormatFlag(filtersCmd)
	redisCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(redisCmd)
}
