package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/SmogStory/internal/aqi"
	"github.com/TobiSchelling/SmogStory/internal/config"
	"github.com/TobiSchelling/SmogStory/internal/database"
	"github.com/TobiSchelling/SmogStory/internal/pipeline"
	"github.com/TobiSchelling/SmogStory/internal/publish"
	"github.com/TobiSchelling/SmogStory/internal/render"
	"github.com/TobiSchelling/SmogStory/internal/scheduler"
	"github.com/TobiSchelling/SmogStory/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config

	// redactor collects every secret loaded during the process so the
	// final error message can be scrubbed.
	redactor = &publish.Redactor{}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		msg := err.Error()
		// Nothing to scrub when no credentials were ever read.
		if redactor.Loaded() {
			msg = redactor.Redact(msg)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "smogstory",
	Short:         "Hourly air quality stories",
	Long:          "SmogStory scrapes the current AQI for a city, renders it onto a story image and posts it to Instagram.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		config.LoadEnv()

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("smogstory", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/smogstory/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Set hosting.github.repository (or GITHUB_REPOSITORY) before publishing.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("City: %s\n\n", cfg.Source.City)
		fmt.Println("Renders:")
		fmt.Printf("  Total: %d\n", stats.Renders)
		fmt.Printf("  Last: %s\n", orNone(stats.LastRenderedAt))
		fmt.Println("\nPublications:")
		fmt.Printf("  Attempts: %d\n", stats.Publications)
		fmt.Printf("  Published: %d\n", stats.Published)
		fmt.Printf("  Failed: %d\n", stats.Failed)
		fmt.Printf("  Last published: %s\n", orNone(stats.LastPublished))

		recent, err := db.RecentPublications(5)
		if err != nil {
			return fmt.Errorf("listing publications: %w", err)
		}
		if len(recent) > 0 {
			fmt.Println("\nRecent:")
			for _, p := range recent {
				fmt.Printf("  %s  %-9s %s\n", p.CreatedAt, p.State, p.Filename)
			}
		}
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print the current AQI without rendering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := aqi.NewFetcher(cfg.Source).Fetch(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s AQI: %d (%s)\n", cfg.Source.City, value, aqi.Classify(value).Label)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch the current AQI and render this hour's story image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := aqi.NewFetcher(cfg.Source).Fetch(cmd.Context())
		if err != nil {
			return err
		}
		log.Printf("Current %s AQI: %d", cfg.Source.City, value)

		path, err := render.New(cfg.Render, nil).Render(value)
		if err != nil {
			return err
		}

		db := openLedger()
		if db != nil {
			defer db.Close()
		}
		pipeline.RecordRender(db, path, aqi.Classify(value))

		fmt.Println(path)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <filename>",
	Short: "Publish a rendered story image from the images directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publisher := publish.New(cfg, publish.WithRedactor(redactor))
		result, err := publisher.Publish(cmd.Context(), args[0])

		// Files that never passed validation have nothing worth recording.
		if !errors.Is(err, publish.ErrValidation) {
			db := openLedger()
			if db != nil {
				defer db.Close()
			}
			pipeline.RecordPublication(db, result, err, redactor)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Story published with media ID %s\n", result.MediaID)
		return nil
	},
}

// --- run command ---

var (
	dryRun      bool
	withPublish bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline: fetch -> render [-> publish]",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openLedger()
		if db != nil {
			defer db.Close()
		}
		pipe := newPipeline(db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(withPublish)
		} else {
			result = pipe.Run(cmd.Context(), withPublish)
		}

		total := 2
		if withPublish {
			total = 3
		}
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, total, step.Name)
			if step.Err != nil {
				fmt.Println("  Failed")
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if err := result.Err(); err != nil {
			return err
		}
		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'smogstory serve' to preview the stories.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().BoolVar(&withPublish, "publish", false, "Publish the rendered story")
}

// --- schedule command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Render and publish on the configured cron schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openLedger()
		if db != nil {
			defer db.Close()
		}
		pipe := newPipeline(db)

		s := scheduler.New(cfg.Schedule.Cron, 0, func(ctx context.Context) error {
			return pipe.Run(ctx, true).Err()
		})
		if err := s.Start(cmd.Context()); err != nil {
			return err
		}
		defer s.Stop()

		fmt.Printf("Scheduled %q, next run at %s\n", cfg.Schedule.Cron, s.NextRun().Format("2006-01-02 15:04"))
		fmt.Println("Press Ctrl+C to stop")
		<-cmd.Context().Done()
		log.Println("Shutting down scheduler")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, cfg.Render.OutputDir, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func newPipeline(db *database.DB) *pipeline.Pipeline {
	return pipeline.New(
		cfg,
		db,
		aqi.NewFetcher(cfg.Source),
		render.New(cfg.Render, nil),
		publish.New(cfg, publish.WithRedactor(redactor)),
		redactor,
	)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "smogstory.db")
	return database.Open(dbPath)
}

// openLedger opens the database for bookkeeping only. Failures are logged
// and the caller carries on without a ledger.
func openLedger() *database.DB {
	db, err := openDB()
	if err != nil {
		log.Printf("Ledger unavailable: %v", err)
		return nil
	}
	return db
}

func orNone(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}
