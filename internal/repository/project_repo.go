package repository

import (
	"gorm.io/gorm"

	"quality-scanner/internal/model"
	pkgErrors "quality-scanner/pkg/errors"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id string, opts ...QueryOption) (*model.Project, error)
	FindByKey(projectKey string, opts ...QueryOption) (*model.Project, error)
	ExistsByNameOrKey(name, projectKey, excludeID string) (bool, error)
	List() ([]*model.Project, error)
	Update(project *model.Project) error
	Delete(id string) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return wrapWriteError(err, "创建项目失败")
	}
	return nil
}

func (r *projectRepository) FindByID(id string, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	err := applyOptions(r.db, opts).Where("id = ?", id).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) FindByKey(projectKey string, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	err := applyOptions(r.db, opts).Where("project_key = ?", projectKey).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

// ExistsByNameOrKey 名称或 key 任一冲突即存在, excludeID 用于更新时排除自身
func (r *projectRepository) ExistsByNameOrKey(name, projectKey, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&model.Project{}).Where("name = ? OR project_key = ?", name, projectKey)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "检查项目是否存在失败", err)
	}
	return count > 0, nil
}

func (r *projectRepository) List() ([]*model.Project, error) {
	var projects []*model.Project
	if err := r.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) Update(project *model.Project) error {
	if err := r.db.Omit("Scans", "QualityProfile").Save(project).Error; err != nil {
		return wrapWriteError(err, "更新项目失败")
	}
	return nil
}

// Delete 删除项目及其扫描和阶段结果
func (r *projectRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		scanIDs := tx.Model(&model.Scan{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("scan_id IN (?)", scanIDs).Delete(&model.PhaseResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Scan{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Project{}).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目失败", err)
	}
	return nil
}
