package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/app"
	"github.com/noah-isme/bidportal-archiver/internal/cli"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	"github.com/noah-isme/bidportal-archiver/pkg/config"
	"github.com/noah-isme/bidportal-archiver/pkg/database"
	"github.com/noah-isme/bidportal-archiver/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := cli.Deps{
		Open: func(ctx context.Context) (*cli.Services, error) {
			a, err := app.New(ctx, cfg, logr)
			if err != nil {
				return nil, err
			}
			return &cli.Services{
				Archiver: a.Archiver,
				Projects: a.Projects,
				Queries:  a.Queries,
				Exports:  a.Exports,
				WaitIdle: a.CleanupQueue.WaitIdle,
				Close:    a.Close,
			}, nil
		},
		Migrate: func() (*database.MigrationResult, error) {
			return database.Migrate(cfg.Database)
		},
		Tokens: service.NewIdentityService(logr.With(zap.String("component", "cli")), service.IdentityConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
			Audience:          cfg.JWT.Audience,
		}),
	}

	if err := cli.NewRootCmd(deps, version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
