package repository

import (
	"gorm.io/gorm"

	"quality-scanner/internal/model"
	pkgErrors "quality-scanner/pkg/errors"
)

// QualityProfileRepository 质量配置仓储接口
type QualityProfileRepository interface {
	Create(profile *model.QualityProfile) error
	FindByID(id string, opts ...QueryOption) (*model.QualityProfile, error)
	ExistsByName(name, excludeID string) (bool, error)
	List(opts ...QueryOption) ([]*model.QualityProfile, error)
	Update(profile *model.QualityProfile) error
	Delete(id string) error
}

type qualityProfileRepository struct {
	db *gorm.DB
}

// NewQualityProfileRepository 创建质量配置仓储实例
func NewQualityProfileRepository(db *gorm.DB) QualityProfileRepository {
	return &qualityProfileRepository{db: db}
}

// Create 创建质量配置, 携带的 Items 一并写入
func (r *qualityProfileRepository) Create(profile *model.QualityProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return wrapWriteError(err, "创建质量配置失败")
	}
	return nil
}

func (r *qualityProfileRepository) FindByID(id string, opts ...QueryOption) (*model.QualityProfile, error) {
	var profile model.QualityProfile
	err := applyOptions(r.db, opts).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询质量配置失败", err)
	}
	return &profile, nil
}

func (r *qualityProfileRepository) ExistsByName(name, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&model.QualityProfile{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "检查质量配置是否存在失败", err)
	}
	return count > 0, nil
}

// List 按名称升序
func (r *qualityProfileRepository) List(opts ...QueryOption) ([]*model.QualityProfile, error) {
	var profiles []*model.QualityProfile
	if err := applyOptions(r.db, opts).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询质量配置列表失败", err)
	}
	return profiles, nil
}

func (r *qualityProfileRepository) Update(profile *model.QualityProfile) error {
	if err := r.db.Omit("Items", "Projects").Save(profile).Error; err != nil {
		return wrapWriteError(err, "更新质量配置失败")
	}
	return nil
}

// Delete 解除项目引用, 删除配置项后删除质量配置
func (r *qualityProfileRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).
			Where("quality_profile_id = ?", id).
			Update("quality_profile_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&model.ConfigItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.QualityProfile{}).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除质量配置失败", err)
	}
	return nil
}
