// Package manage implements the account administration CLI.
package manage

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athujoshi24/legendary-panel/internal/repository"
	"github.com/athujoshi24/legendary-panel/internal/services"
	"github.com/athujoshi24/legendary-panel/pkg/config"
	"github.com/athujoshi24/legendary-panel/pkg/database"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
)

// Env is what a command needs to run. Close releases it.
type Env struct {
	Auth  services.AuthService
	Close func()
}

// Opener builds an Env; tests substitute their own.
type Opener func(ctx context.Context) (*Env, error)

// NewRootCmd assembles the command tree around open.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "manage",
		Short:        "Administer recipe catalog accounts",
		SilenceUsage: true,
	}
	root.AddCommand(
		newCreateUserCmd(open, false),
		newCreateUserCmd(open, true),
		newDeleteUserCmd(open),
	)
	return root
}

// Execute runs the CLI against the configured database.
func Execute() error {
	return NewRootCmd(openFromConfig).Execute()
}

func openFromConfig(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	auth := services.NewAuthService(repository.NewUserRepository(db), []byte(cfg.JWTSecret), cfg.TokenTTL)
	return &Env{
		Auth: auth,
		Close: func() {
			_ = database.Close(db)
			logger.Sync()
		},
	}, nil
}

func withEnv(cmd *cobra.Command, open Opener, run func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	defer env.Close()
	return run(ctx, env)
}
