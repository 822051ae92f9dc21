package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/allocation"
	"github.com/railzwaylabs/aligntrack/internal/authorization"
	"github.com/railzwaylabs/aligntrack/internal/billing"
	"github.com/railzwaylabs/aligntrack/internal/bootstrap"
	"github.com/railzwaylabs/aligntrack/internal/casework"
	"github.com/railzwaylabs/aligntrack/internal/catalog"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/config"
	"github.com/railzwaylabs/aligntrack/internal/idempotency"
	"github.com/railzwaylabs/aligntrack/internal/migration"
	"github.com/railzwaylabs/aligntrack/internal/notification"
	notificationservice "github.com/railzwaylabs/aligntrack/internal/notification/service"
	"github.com/railzwaylabs/aligntrack/internal/observability"
	"github.com/railzwaylabs/aligntrack/internal/redis"
	"github.com/railzwaylabs/aligntrack/internal/server"
	"github.com/railzwaylabs/aligntrack/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "aligntrack",
		Short:        "Aligner case workflow and doctor billing",
		Version:      readVersionFromEnv(),
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newDispatchCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations, seed reference data and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newDispatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver pending case events to inboxes and notification providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval; 0 drains once and exits")
	return cmd
}

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
	)
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		coreModules(),
		redis.Module,
		idempotency.Module,
		bootstrap.Module,
		fx.Invoke(bootstrap.EnforceSchemaGate),
		catalog.Module,
		notification.Module,
		casework.Module,
		allocation.Module,
		billing.Module,
		authorization.Module,
		server.Module,
	)
	app.Run()
}

func runDispatch(interval time.Duration) error {
	var (
		dispatcher *notificationservice.Dispatcher
		log        *zap.Logger
	)
	app := fx.New(
		coreModules(),
		bootstrap.Module,
		fx.Invoke(bootstrap.EnforceSchemaGate),
		notification.Module,
		fx.Populate(&dispatcher, &log),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("dispatch startup failed: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		n, err := dispatcher.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}
		log.Info("case events dispatched", zap.Int("count", n))

		if interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
