package repository

import (
	"gorm.io/gorm"

	"quality-scanner/internal/model"
	pkgErrors "quality-scanner/pkg/errors"
)

// ConfigItemRepository 配置项仓储接口
type ConfigItemRepository interface {
	Create(item *model.ConfigItem) error
	FindByID(id string) (*model.ConfigItem, error)
	ListByProfileID(profileID string) ([]*model.ConfigItem, error)
	Update(item *model.ConfigItem) error
	Delete(id string) error
}

type configItemRepository struct {
	db *gorm.DB
}

func NewConfigItemRepository(db *gorm.DB) ConfigItemRepository {
	return &configItemRepository{db: db}
}

func (r *configItemRepository) Create(item *model.ConfigItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建配置项失败", err)
	}
	return nil
}

func (r *configItemRepository) FindByID(id string) (*model.ConfigItem, error) {
	var item model.ConfigItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项失败", err)
	}
	return &item, nil
}

// ListByProfileID 按 (tool, filename) 升序
func (r *configItemRepository) ListByProfileID(profileID string) ([]*model.ConfigItem, error) {
	items := make([]*model.ConfigItem, 0)
	err := r.db.Where("profile_id = ?", profileID).
		Order("tool ASC").Order("filename ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询配置项列表失败", err)
	}
	return items, nil
}

func (r *configItemRepository) Update(item *model.ConfigItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新配置项失败", err)
	}
	return nil
}

func (r *configItemRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.ConfigItem{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除配置项失败", err)
	}
	return nil
}
