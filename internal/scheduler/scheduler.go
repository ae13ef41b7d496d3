package scheduler

import (
	"quality-scanner/internal/adapter/notification"
	"quality-scanner/internal/pkg/config"
	"quality-scanner/internal/repository"
	"quality-scanner/internal/service"
	"quality-scanner/pkg/constants"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	scanSvc       service.ScanService
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(db *gorm.DB, logger *zap.Logger, cfg *config.Config) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:   c,
		logger: logger,
		scanSvc: service.NewScanService(
			repository.NewScanRepository(db),
			repository.NewPhaseResultRepository(db),
			repository.NewProjectRepository(db),
			service.WithNotifier(notification.NewFromConfig(&cfg.Notification, logger)),
		),
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cfg *config.Config) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	staleCfg := cfg.Scheduler.StaleScan
	if staleCfg.Enabled {
		timeout, err := staleCfg.TimeoutDuration()
		if err != nil {
			return err
		}

		// cron 表达式格式: 秒 分 时 日 月 周
		cronExpr := staleCfg.Cron
		if cronExpr == "" {
			cronExpr = "0 */10 * * * *"
			log.Warnf("未配置scheduler.stale_scan.cron，使用默认值: %s", cronExpr)
		}

		entryID, err := s.cron.AddFunc(cronExpr, func() {
			log.Info("执行定时任务: 超时扫描回收")
			if _, err := s.scanSvc.ReapStale(timeout); err != nil {
				log.Errorf("超时扫描回收任务执行失败: %v", err)
			}
		})
		if err != nil {
			log.Errorf("注册超时扫描回收: %v 任务失败: %v", cronExpr, err)
			return err
		}

		s.cronSchedules[constants.JobStaleScanReaper] = entryID
		log.Infof("超时扫描回收任务已注册: %s timeout=%s entry_id=%d", cronExpr, timeout, entryID)
	} else {
		log.Info("超时扫描回收未启用")
	}

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// Jobs 已注册的任务名
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.cronSchedules))
	for name := range s.cronSchedules {
		names = append(names, name)
	}
	return names
}

// TriggerStaleScanReap 手动触发超时扫描回收（用于测试或手动触发）
func (s *Scheduler) TriggerStaleScanReap(cfg *config.Config) (int, error) {
	timeout, err := cfg.Scheduler.StaleScan.TimeoutDuration()
	if err != nil {
		return 0, err
	}
	s.logger.Info("手动触发超时扫描回收", zap.Duration("timeout", timeout))
	return s.scanSvc.ReapStale(timeout)
}
