package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"quality-scanner/internal/adapter/notification"
	"quality-scanner/internal/api/handler"
	"quality-scanner/internal/api/middleware"
	"quality-scanner/internal/archive"
	"quality-scanner/internal/pkg/auth"
	"quality-scanner/internal/pkg/config"
	"quality-scanner/internal/pkg/crypto"
	"quality-scanner/internal/repository"
	"quality-scanner/internal/service"
	"quality-scanner/pkg/utils"
)

// Setup 设置路由
func Setup(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*gin.Engine, error) {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	utils.RegisterJSONFieldNames()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	sealer, err := crypto.NewSealer(cfg.Crypto.Secret)
	if err != nil {
		return nil, fmt.Errorf("初始化加密器失败: %w", err)
	}

	// 初始化Repository
	projectRepo := repository.NewProjectRepository(db)
	profileRepo := repository.NewQualityProfileRepository(db)
	configItemRepo := repository.NewConfigItemRepository(db)
	scanRepo := repository.NewScanRepository(db)
	phaseResultRepo := repository.NewPhaseResultRepository(db)

	// 初始化Service
	projectService := service.NewProjectService(projectRepo, profileRepo, configItemRepo, sealer)
	profileService := service.NewQualityProfileService(profileRepo, configItemRepo)
	scanService := service.NewScanService(scanRepo, phaseResultRepo, projectRepo,
		service.WithNotifier(notification.NewFromConfig(&cfg.Notification, logger)))
	reportService := service.NewReportService(archive.NewReader(cfg.Archive.ReportsPath))

	// 初始化Handler
	projectHandler := handler.NewProjectHandler(projectService)
	profileHandler := handler.NewQualityProfileHandler(profileService)
	scanHandler := handler.NewScanHandler(scanService)
	reportHandler := handler.NewReportHandler(reportService)

	authCfg := &cfg.Auth
	can := func(p auth.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(authCfg, p)
	}

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authCfg))
	{
		// 项目管理
		groupProjects := v1.Group("/projects")
		{
			// 注册项目, key 参数按 key 查询
			groupProjects.POST("", can(auth.PermProjectCreate), projectHandler.Create)
			groupProjects.GET("", can(auth.PermProjectView), projectHandler.List)
			// 扫描前获取配置文件
			groupProjects.GET("/configs/:key", can(auth.PermProfileView), projectHandler.GetConfigs)
			groupProjects.GET("/:id", can(auth.PermProjectView), projectHandler.GetByID)
			groupProjects.PATCH("/:id", can(auth.PermProjectUpdate), projectHandler.Update)
			// 级联删除扫描记录
			groupProjects.DELETE("/:id", can(auth.PermProjectDelete), projectHandler.Delete)

			// 项目下的扫描
			groupProjects.POST("/:id/scans", can(auth.PermScanWrite), scanHandler.Start)
			groupProjects.GET("/:id/scans", can(auth.PermScanView), scanHandler.ListByProject)
			groupProjects.GET("/:id/scans/latest", can(auth.PermScanView), scanHandler.GetLatest)
		}

		// 扫描
		groupScans := v1.Group("/scans")
		{
			groupScans.GET("/:id", can(auth.PermScanView), scanHandler.GetByID)
			groupScans.PATCH("/:id", can(auth.PermScanWrite), scanHandler.Finalize)
			groupScans.POST("/:id/phases", can(auth.PermScanWrite), scanHandler.RecordPhase)
			groupScans.GET("/:id/phases", can(auth.PermScanView), scanHandler.ListPhases)
		}

		// 质量配置
		groupProfiles := v1.Group("/quality-profiles")
		{
			groupProfiles.POST("", can(auth.PermProfileCreate), profileHandler.Create)
			groupProfiles.GET("", can(auth.PermProfileView), profileHandler.List)
			groupProfiles.GET("/:id", can(auth.PermProfileView), profileHandler.GetByID)
			groupProfiles.PATCH("/:id", can(auth.PermProfileUpdate), profileHandler.Update)
			groupProfiles.DELETE("/:id", can(auth.PermProfileDelete), profileHandler.Delete)
			groupProfiles.POST("/:id/configs", can(auth.PermProfileUpdate), profileHandler.AddConfigItem)
			groupProfiles.GET("/:id/configs", can(auth.PermProfileView), profileHandler.ListConfigItems)
		}

		// 配置项
		groupConfigItems := v1.Group("/config-items")
		{
			groupConfigItems.PATCH("/:id", can(auth.PermProfileUpdate), profileHandler.UpdateConfigItem)
			groupConfigItems.DELETE("/:id", can(auth.PermProfileUpdate), profileHandler.RemoveConfigItem)
		}

		// 报告归档（只读）
		v1.GET("/reports", can(auth.PermReportView), reportHandler.List)
	}

	logger.Debug("路由注册完成", zap.Int("routes", len(r.Routes())), zap.Bool("auth", authCfg.Enabled))
	return r, nil
}
