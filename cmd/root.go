package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/config"
	"github.com/c-tram/cycle-splits/internal/logger"
)

var (
	dbPath   string
	season   int
	apiURL   string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "splits",
	Short: "Baseball situational splits explorer",
	Long: `Load situational split payloads from the stats backend, derive rate stats,
aggregate buckets and grade every metric against the league baseline.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command. SIGINT cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".splits", "splits.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite cache database")
	rootCmd.PersistentFlags().IntVar(&season, "season", 0, "season year (default from SPLITS_SEASON or the current season)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "stats backend base URL (default from SPLITS_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment, lets explicit flags win, and builds the
// logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("season") {
		c.Season = season
	}
	if cmd.Flags().Changed("api-url") {
		c.APIURL = apiURL
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	cfg = c
	log = logger.New(cfg.LogLevel)
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
