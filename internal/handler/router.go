package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/bidportal-archiver/api/swagger"
	"github.com/noah-isme/bidportal-archiver/internal/middleware"
	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	"github.com/noah-isme/bidportal-archiver/pkg/logger"
	corsmiddleware "github.com/noah-isme/bidportal-archiver/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bidportal-archiver/pkg/middleware/requestid"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Identity interface {
		ValidateToken(tokenString string) (*models.JWTClaims, error)
	}
	Audit interface {
		Create(ctx context.Context, log *models.AuditLog) error
	}

	Archives *ArchiveHandler
	Ops      *MetricsHandler
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", cfg.Ops.Health)
	r.GET("/ready", cfg.Ops.Ready)
	r.GET("/metrics", cfg.Ops.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.Identity))

	api.POST("/projects/:id/archive",
		middleware.RBAC(models.RoleOwner, models.RoleCoordinator),
		cfg.Archives.ArchiveProject,
	)

	archives := api.Group("/archives/projects", middleware.RBAC(models.RoleOwner, models.RoleCoordinator))
	archives.GET("", cfg.Archives.List)
	archives.GET("/:id", cfg.Archives.Get)
	archives.GET("/:id/export",
		middleware.Audit(cfg.Audit, cfg.Logger, models.AuditActionArchiveExport, models.AuditResourceArchivedProject),
		cfg.Archives.Export,
	)

	return r
}
