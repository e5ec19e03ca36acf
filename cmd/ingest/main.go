package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/timmy/pokedex/internal/app"
	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/logger"
)

var (
	configPath string
	generation int
	batchSize  int
	limit      int
	offset     int

	appLogger *logger.Logger
	pokedex   *app.App
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pokedex catalog ingestion jobs",
	Long:  `Runs catalog sync, stats vector backfill and sprite mirroring against the configured database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		pokedex, err = app.New(cmd.Context(), cfg, appLogger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pokedex != nil {
			pokedex.Close()
		}
	},
	SilenceUsage: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize one generation from PokeAPI",
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := pokedex.Sync.SyncGeneration(cmd.Context(), generation)
		if err != nil {
			return fmt.Errorf("sync generation %d: %w", generation, err)
		}
		return printJSON(run)
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Recompute normalized stats vectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pokedex.Backfill.BackfillStatsVector(cmd.Context(), batchSize)
		if err != nil {
			return fmt.Errorf("backfill stats vectors: %w", err)
		}
		return printJSON(result)
	},
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror-sprites",
	Short: "Copy sprite images into object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pokedex.Sprites == nil {
			return fmt.Errorf("object storage is disabled (storage.enabled=false)")
		}
		stats, err := pokedex.Sprites.MirrorSprites(cmd.Context(), batchSize)
		if err != nil {
			return fmt.Errorf("mirror sprites: %w", err)
		}
		return printJSON(stats)
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := pokedex.Runs.ListRuns(cmd.Context(), limit, offset)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		return printJSON(page)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	syncCmd.Flags().IntVarP(&generation, "generation", "g", 0, "Generation number to synchronize")
	_ = syncCmd.MarkFlagRequired("generation")

	backfillCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Page size (50-2000, 0 for default)")
	mirrorCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Page size (0 for default)")

	runsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	runsCmd.Flags().IntVar(&offset, "offset", 0, "Runs to skip")

	rootCmd.AddCommand(syncCmd, backfillCmd, mirrorCmd, runsCmd)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	appLogger = logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stderr,
		ServiceName: "pokedex-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// SIGINT/SIGTERM cancel the running job; a sync closes its run as FAILED
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appLogger.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}
