// Entry point for plume: RSS to post-draft pipeline with a web review
// dashboard and a cobra CLI for one-shot operations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/plume/dbopen"
	"github.com/hazyhaar/plume/plume"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "plume",
	Short: "Turn RSS feeds into reviewable social post drafts",
	Long: `plume fetches configured RSS feeds, dedups and stores articles,
generates a daily quota of post drafts and serves a review dashboard.

Without a subcommand it starts the web interface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard and the daily scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		go svc.RunScheduler(ctx)
		return serve(ctx, svc, cfg)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all sources and generate today's drafts once",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		summary, err := svc.RunDailyJob(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d sources (%d entries, %d new articles)\n",
			summary.Sources, summary.Entries, summary.NewArticles)
		fmt.Printf("Created %d drafts (%d failures) in %dms\n",
			summary.DraftsCreated, summary.Failures, summary.DurationMs)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily scheduler daemon without the web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svc.RunScheduler(ctx)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		st, err := svc.Stats(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Articles: %d total, %d unprocessed\n", st.TotalArticles, st.Unprocessed)
		fmt.Printf("Posts:    %d total\n", st.TotalPosts)
		fmt.Printf("  draft:    %d\n", st.Drafts)
		fmt.Printf("  approved: %d\n", st.Approved)
		fmt.Printf("  posted:   %d\n", st.Posted)
		fmt.Printf("  rejected: %d\n", st.Rejected)
		return nil
	},
}

var exportMarkdown bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pending drafts to a dated file in the drafts directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		var path string
		var n int
		if exportMarkdown {
			path, n, err = svc.ExportMarkdown(ctx)
		} else {
			path, n, err = svc.ExportJSON(ctx)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("No drafts to export.")
			return nil
		}
		fmt.Printf("Exported %d drafts to %s\n", n, path)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all posts and return articles to the unprocessed pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		posts, articles, err := svc.ResetAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d posts, reset %d articles\n", posts, articles)
		return nil
	},
}

// setup loads config, opens the database, applies the schema and builds
// the service. The caller owns closing the returned db.
func setup() (*plume.Service, *plume.Config, *sql.DB, error) {
	initLogging()

	cfg, err := plume.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := dbopen.Open(cfg.DatabasePath, dbopen.WithMkdirAll())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := plume.ApplySchema(db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("apply schema: %w", err)
	}

	svc, err := plume.New(db, cfg, slog.Default())
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return svc, cfg, db, nil
}

func initLogging() {
	var lvl slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	exportCmd.Flags().BoolVar(&exportMarkdown, "markdown", false, "export Markdown instead of JSON")
	rootCmd.AddCommand(serveCmd, runCmd, scheduleCmd, statsCmd, exportCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
