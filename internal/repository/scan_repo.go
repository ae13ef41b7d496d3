package repository

import (
	"time"

	"gorm.io/gorm"

	"quality-scanner/internal/model"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
)

// ScanRepository 扫描记录仓储接口
type ScanRepository interface {
	Create(scan *model.Scan) error
	FindByID(id string, opts ...QueryOption) (*model.Scan, error)
	ListByProjectID(projectID string, limit int) ([]*model.Scan, error)
	FindLatestByProjectID(projectID string) (*model.Scan, error)
	ListRunningStartedBefore(before time.Time) ([]*model.Scan, error)
	MarkFailedIfRunning(id string, finishedAt time.Time) (bool, error)
	Update(scan *model.Scan) error
}

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository 创建扫描记录仓储实例
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

// Create 创建扫描记录
func (r *scanRepository) Create(scan *model.Scan) error {
	if err := r.db.Create(scan).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建扫描记录失败", err)
	}
	return nil
}

// FindByID 根据ID查询扫描记录
func (r *scanRepository) FindByID(id string, opts ...QueryOption) (*model.Scan, error) {
	var scan model.Scan
	err := applyOptions(r.db, opts).Where("id = ?", id).First(&scan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询扫描记录失败", err)
	}
	return &scan, nil
}

// ListByProjectID 最新的在前
func (r *scanRepository) ListByProjectID(projectID string, limit int) ([]*model.Scan, error) {
	scans := make([]*model.Scan, 0)
	err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询扫描记录列表失败", err)
	}
	return scans, nil
}

// FindLatestByProjectID 项目最新一次扫描, 没有扫描时返回 ErrRecordNotFound
func (r *scanRepository) FindLatestByProjectID(projectID string) (*model.Scan, error) {
	var scan model.Scan
	err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&scan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询最新扫描记录失败", err)
	}
	return &scan, nil
}

// ListRunningStartedBefore 开始时间早于 before 且仍在运行的扫描
func (r *scanRepository) ListRunningStartedBefore(before time.Time) ([]*model.Scan, error) {
	scans := make([]*model.Scan, 0)
	err := r.db.Where("status = ? AND started_at < ?", constants.ScanStatusRunning, before).
		Order("started_at ASC").
		Find(&scans).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询运行中扫描失败", err)
	}
	return scans, nil
}

// MarkFailedIfRunning 仅当扫描仍在运行时置为 failed, 返回是否更新
func (r *scanRepository) MarkFailedIfRunning(id string, finishedAt time.Time) (bool, error) {
	result := r.db.Model(&model.Scan{}).
		Where("id = ? AND status = ?", id, constants.ScanStatusRunning).
		Updates(map[string]interface{}{
			"status":      constants.ScanStatusFailed,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "回收扫描记录失败", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Update 更新扫描记录
func (r *scanRepository) Update(scan *model.Scan) error {
	if err := r.db.Omit("Project", "PhaseResults").Save(scan).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新扫描记录失败", err)
	}
	return nil
}
