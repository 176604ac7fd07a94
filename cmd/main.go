package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/futureofgaming-backend/internal/app"
	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/postgres"
	"github.com/yungbote/futureofgaming-backend/internal/platform/shutdown"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "futureofgaming",
		Short:         "Future of Gaming patent newsletter backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.PathEnv), "YAML config file (watched for flag changes)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(regenerateCmd())
	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), app.Options{ConfigPath: configPath, RunWorker: withWorker}, func(ctx context.Context, a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", os.Getenv("RUN_WORKER") == "true", "also poll the Temporal task queue")
	return cmd
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the publish schedule and login event consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), app.Options{ConfigPath: configPath, RunWorker: true}, func(ctx context.Context, a *app.App) error {
				return a.RunWorker(ctx)
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(postgres.Up), string(postgres.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			dir := postgres.Direction(args[0])
			log.Info("Running migrations", "direction", dir)
			if err := postgres.Migrate(postgres.DSN(cfg.DB), dir); err != nil {
				return err
			}
			log.Info("Migrations complete", "direction", dir)
			return nil
		},
	}
}

func regenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate [patent-number]",
		Short: "Re-render a patent scorecard and overwrite the cached images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), app.Options{}, func(ctx context.Context, a *app.App) error {
				url, err := a.Regenerate(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish every scheduled patent that is due, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), app.Options{}, func(ctx context.Context, a *app.App) error {
				res, err := a.PublishNow(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			})
		},
	}
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func withApp(parent context.Context, opts app.Options, fn func(context.Context, *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := shutdown.NotifyContext(parent)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, log, opts)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
