package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"threadfeed/internal/config"
	"threadfeed/internal/feed"
	"threadfeed/internal/model"
	"threadfeed/internal/reddit"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X threadfeed/cmd.version=...".
var version = "dev"

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "threadfeed",
	Short:        "Threadfeed CLI",
	Long:         "Browse, rank and collect discussion feeds from the terminal.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/threadfeed")
		v.AddConfigPath("configs")
	}
	v.SetEnvPrefix("THREADFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	setupLogging(appCfg.App.LogLevel)
}

// setupLogging installs a text handler on stderr at the configured level.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

// newSource builds the Reddit client from configuration.
func newSource(cfg config.Config) (*reddit.Client, error) {
	timeout, err := config.Duration("source.timeout", cfg.Source.Timeout)
	if err != nil {
		return nil, err
	}
	return reddit.NewClient(cfg.Source.BaseURL, cfg.Source.UserAgent, timeout, cfg.Source.PageSize), nil
}

// configuredFilters returns the initial filters from the feed section.
func configuredFilters(cfg config.Config) (model.FilterState, error) {
	sort, err := model.ParseSort(cfg.Feed.Sort)
	if err != nil {
		return model.FilterState{}, err
	}
	window, err := model.ParseWindow(cfg.Feed.Window)
	if err != nil {
		return model.FilterState{}, err
	}
	return model.FilterState{Scope: cfg.Feed.Scope, Sort: sort, Window: window}, nil
}

// applyFilterFlags overrides f with the filter flags the user set.
func applyFilterFlags(cmd *cobra.Command, f *model.FilterState) error {
	flags := cmd.Flags()
	if flags.Changed("sort") {
		s, _ := flags.GetString("sort")
		m, err := model.ParseSort(s)
		if err != nil {
			return err
		}
		f.Sort = m
	}
	if flags.Changed("window") {
		s, _ := flags.GetString("window")
		w, err := model.ParseWindow(s)
		if err != nil {
			return err
		}
		f.Window = w
	}
	if flags.Changed("query") {
		f.Query, _ = flags.GetString("query")
	}
	return nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("sort", "", "sort mode: hot, new, top or rising")
	cmd.Flags().String("window", "", "time window for top: hour, day, week, month, year or all")
	cmd.Flags().String("query", "", "free-text search query")
}

// feedMode reads the configured feed mode.
func feedMode(cfg config.Config) (feed.Mode, error) {
	return feed.ParseMode(cfg.Feed.Mode)
}
