package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/repository"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	"github.com/noah-isme/bidportal-archiver/pkg/cache"
	"github.com/noah-isme/bidportal-archiver/pkg/config"
	"github.com/noah-isme/bidportal-archiver/pkg/database"
	"github.com/noah-isme/bidportal-archiver/pkg/jobs"
	"github.com/noah-isme/bidportal-archiver/pkg/storage"
)

// App holds the wired dependencies shared by the API server and the CLI.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Store   storage.ObjectStore
	Metrics *service.MetricsService

	Projects *repository.ProjectRepository
	Archives *repository.ArchiveRepository
	Audit    *repository.AuditRepository
	Cache    *repository.CacheRepository

	CleanupQueue *jobs.Queue

	Archiver *service.ArchiveService
	Queries  *service.ArchiveQueryService
	Exports  *service.ExportService
	Identity *service.IdentityService
}

// New connects to Postgres, Redis and object storage, applies migrations when enabled and
// builds the services. The cleanup queue is started; call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: service.NewMetricsService()}

	if cfg.Database.AutoMigrate {
		res, err := database.Migrate(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrations applied", zap.Uint("version", res.Version), zap.Bool("changed", res.Changed))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db

	a.Redis, err = cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}

	buckets := service.AssetBuckets{
		ProjectImages: cfg.Buckets.ProjectImages,
		GanttCharts:   cfg.Buckets.GanttCharts,
		Documents:     cfg.Buckets.Documents,
	}
	a.Store, err = storage.New(ctx, cfg.Storage, cfg.Buckets.ProjectImages, cfg.Buckets.GanttCharts, cfg.Buckets.Documents)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	a.Projects = repository.NewProjectRepository(db)
	a.Archives = repository.NewArchiveRepository(db)
	a.Audit = repository.NewAuditRepository(db)
	a.Cache = repository.NewCacheRepository(a.Redis, logger)

	a.CleanupQueue = jobs.NewQueue("asset-cleanup",
		service.NewAssetCleanupHandler(a.Store, a.Metrics, logger),
		jobs.QueueConfig{
			Workers:    cfg.Archive.CleanupWorkers,
			MaxRetries: cfg.Archive.CleanupRetries,
			RetryDelay: cfg.Archive.CleanupRetryDelay,
			DeadLetter: service.NewAssetCleanupDeadLetter(a.Metrics, logger),
			Logger:     logger,
		})
	a.CleanupQueue.Start(context.WithoutCancel(ctx))

	deps := service.ArchiveDependencies{
		Tx:           repository.NewTxManager(db),
		Projects:     a.Projects,
		Archives:     a.Archives,
		Audit:        a.Audit,
		Store:        a.Store,
		CleanupQueue: a.CleanupQueue,
		Metrics:      a.Metrics,
	}
	if a.Redis != nil {
		deps.Locker = a.Cache
	}
	a.Archiver = service.NewArchiveService(deps, service.ArchiveServiceConfig{
		Timeout: cfg.Archive.Timeout,
		LockTTL: cfg.Archive.LockTTL,
		Buckets: buckets,
	}, logger)

	cacheSvc := service.NewCacheService(a.Cache, a.Metrics, cfg.Archive.CacheTTL, logger, a.Redis != nil)
	a.Queries = service.NewArchiveQueryService(a.Archives, cacheSvc, cfg.Archive.CacheTTL, logger)
	a.Exports = service.NewExportService(a.Queries, logger, nil, nil)
	a.Identity = service.NewIdentityService(logger, service.IdentityConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	return a, nil
}

// Close stops the cleanup queue and releases connections.
func (a *App) Close() {
	if a.CleanupQueue != nil {
		a.CleanupQueue.Stop()
	}
	switch {
	case a.Cache != nil:
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("close redis", zap.Error(err))
		}
	case a.Redis != nil:
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("close database", zap.Error(err))
		}
	}
}
