package main

import (
	"context"
	"fmt"
	"os"

	"vaops/internal/app"
	"vaops/internal/config"
	"vaops/internal/database"
	"vaops/internal/logger"
	"vaops/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is built lazily so that --help works without a database.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	infra *app.Infra
	repos app.Repositories
	svc   app.Services
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewConnection(cfg.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	infra := app.NewInfra(ctx, cfg, log)
	repos := app.NewRepositories(db)
	notifier := notify.NewFanout(log, infra.Webhook, infra.Events)
	svc := app.NewServices(cfg, repos, app.Deps{Store: infra.Store, Notifier: notifier, Mailer: infra.Mailer}, log)

	return &env{cfg: cfg, log: log, db: db, infra: infra, repos: repos, svc: svc}, nil
}

func (e *env) close() {
	e.infra.Close()
	_ = e.log.Sync()
}

// withEnv adapts a command body that needs the wired services.
func withEnv(fn func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := connect(ctx)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(ctx, e, cmd, args)
	}
}

var rootCmd = &cobra.Command{
	Use:           "vaopsctl",
	Short:         "Operator tooling for the virtual airline backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, importRoutesCmd, releaseMaintenanceCmd, grantAdminCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
