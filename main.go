package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"notesku_backend/internals/configs"
	database "notesku_backend/internals/databases"
	"notesku_backend/internals/features/catalog/repository"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/seeds"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notesku",
		Short:         "Backend berbagi catatan kuliah (branch → semester → section → subject)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init()
		},
		// tanpa subcommand = serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Jalankan HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "AutoMigrate semua tabel catalog + auth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.LoadEnv()
			db, err := database.ConnectDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log := logger.L()
			log.Info().Int("models", len(database.Models())).Msg("✅ migrate selesai")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Isi catalog dari file JSON (branch yang sudah ada dilewati)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.LoadEnv()
			db, err := database.ConnectDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx, cancel := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, 2*time.Minute)
			defer cancelTimeout()

			res, err := seeds.RunAllSeeds(ctx, repository.NewCatalogRepository(db), file)
			if err != nil {
				return err
			}
			log := logger.L()
			ev := log.Info().Strs("skipped", res.Skipped)
			for level, n := range res.Inserted {
				ev = ev.Int(level.String(), n)
			}
			ev.Msg("🌱 seed selesai")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", seeds.DefaultCatalogFile, "path file JSON catalog")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
