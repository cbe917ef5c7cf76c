package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxing-arena-api/internal/config"
	"boxing-arena-api/internal/database"
	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/random"
	"boxing-arena-api/internal/repository"
	"boxing-arena-api/internal/routes"
	"boxing-arena-api/internal/seed"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "arena",
		Short: "Boxing arena API",
		Long:  "Serves the boxer ring and the meal kitchen over HTTP, with bouts decided by random.org draws.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (overrides "+config.EnvPrefix+"CONFIG)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			db, err := database.Open(database.Options{Path: cfg.DatabasePath, LogLevel: cfg.LogLevel})
			if err != nil {
				return err
			}
			closeDB(db)
			log.Info(cmd.Context(), "database migrated", logger.String("path", cfg.DatabasePath))
			return nil
		},
	})
	root.AddCommand(newSeedCmd(&configPath))
	return root
}

func newSeedCmd(configPath *string) *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load boxers and meals from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			fh, err := os.Open(fixturePath)
			if err != nil {
				return err
			}
			defer fh.Close()

			fixture, err := seed.Parse(fh)
			if err != nil {
				return err
			}
			db, err := database.Open(database.Options{Path: cfg.DatabasePath, LogLevel: cfg.LogLevel})
			if err != nil {
				return err
			}
			defer closeDB(db)

			rep, err := seed.Apply(ctx, fixture, repository.NewBoxerRepository(db), repository.NewMealRepository(db), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "boxers created: %d, meals created: %d, skipped: %d\n",
				rep.BoxersCreated, rep.MealsCreated, rep.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "file", "f", "", "Path to the YAML fixture")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func bootstrap(ctx context.Context, configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// closeDB releases the pool behind db.
func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newRandomSource(cfg *config.Config) random.Source {
	if cfg.RandomProvider == config.RandomProviderLocal {
		return random.NewLocal(uint64(time.Now().UnixNano()))
	}
	return random.NewRandomOrg(random.RandomOrgOptions{URL: cfg.RandomURL, Timeout: cfg.RandomTimeout()})
}

func serve(ctx context.Context, configPath string) error {
	cfg, log, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}

	db, err := database.Open(database.Options{Path: cfg.DatabasePath, LogLevel: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer closeDB(db)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := routes.SetupRoutes(routes.Dependencies{
		Config: cfg,
		DB:     db,
		Random: newRandomSource(cfg),
		Logger: log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting",
			logger.String("addr", cfg.Addr),
			logger.String("random_provider", cfg.RandomProvider),
			logger.Int("ttl_seconds", cfg.TTLSeconds))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
