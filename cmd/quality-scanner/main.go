package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"quality-scanner/internal/api/router"
	"quality-scanner/internal/pkg/auth"
	"quality-scanner/internal/pkg/config"
	"quality-scanner/internal/pkg/database"
	"quality-scanner/internal/pkg/jwt"
	"quality-scanner/internal/pkg/logger"
	"quality-scanner/internal/repository"
	"quality-scanner/internal/scheduler"
	"quality-scanner/internal/service"

	_ "quality-scanner/docs" // Swagger docs
)

// @title Quality Scanner API
// @version 1.0
// @description 代码质量扫描引擎 API 文档
// @description 提供项目注册、质量配置、扫描记录和报告归档查询等功能

// @contact.name API Support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3001
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
	issueToken = flag.String("issue-token", "", "为指定客户端签发访问令牌后退出 (例如: -issue-token=ci-runner)")
	tokenRole  = flag.String("role", string(auth.RoleScanner), "签发令牌的角色: admin, scanner, viewer")
)

const (
	appVersion = "1.0.0"
	appName    = "quality-scanner"
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		// 加载配置
		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定:")
			fmt.Println("     ./quality-scanner -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./quality-scanner")
			fmt.Println("  3. 使用默认配置:")
			fmt.Println("     ./quality-scanner  (将使用 configs/config.yaml)")
			os.Exit(1)
		}
		cfg = c

		// 签发令牌不需要日志和数据库
		if *issueToken != "" {
			os.Exit(printToken(cfg, *issueToken, *tokenRole))
		}

		// 初始化日志
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()

	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.Database))

	// 导入质量配置清单
	if cfg.Catalog.SeedFile != "" {
		seedProfiles(cfg.Catalog.SeedFile)
	}

	// 初始化并启动定时任务调度器
	taskScheduler := scheduler.NewScheduler(database.GetDB(), logger.Log, cfg)
	if err := taskScheduler.Start(cfg); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r, err := router.Setup(cfg, database.GetDB(), logger.Log)
	if err != nil {
		logger.Fatal("初始化路由失败", zap.Error(err))
	}

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("reports_path", cfg.Archive.ReportsPath),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	// 关闭定时任务调度器
	taskScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// seedProfiles 导入失败不影响启动
func seedProfiles(path string) {
	db := database.GetDB()
	svc := service.NewQualityProfileService(
		repository.NewQualityProfileRepository(db),
		repository.NewConfigItemRepository(db),
	)
	result, err := svc.SeedFromFile(path)
	if err != nil {
		logger.Error("导入质量配置清单失败", zap.String("file", path), zap.Error(err))
		return
	}
	logger.Info("质量配置清单导入完成",
		zap.String("file", path),
		zap.Strings("created", result.Created),
		zap.Strings("skipped", result.Skipped),
		zap.Strings("failed", result.Failed),
	)
}

// printToken 打印访问令牌, 返回进程退出码
func printToken(cfg *config.Config, client, role string) int {
	if !auth.IsValidRole(role) {
		fmt.Printf("无效的角色: %s\n", role)
		return 1
	}
	if cfg.Auth.JWT.Secret == "" {
		fmt.Println("未配置 auth.jwt.secret, 无法签发令牌")
		return 1
	}
	token, err := jwt.GenerateAccessToken(cfg.Auth.JWT, client, role)
	if err != nil {
		fmt.Printf("签发令牌失败: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	// 1. 命令行参数
	if *configFile != "" {
		return *configFile
	}

	// 2. 环境变量
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	// 3. 默认路径
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
