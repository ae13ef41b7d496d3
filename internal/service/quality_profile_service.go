package service

import (
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/logger"
	"quality-scanner/internal/repository"
	pkgErrors "quality-scanner/pkg/errors"
)

const configItemOrder = "tool ASC, filename ASC"

// QualityProfileService 质量配置与配置项管理
type QualityProfileService interface {
	Create(req *dto.CreateQualityProfileRequest) (*dto.QualityProfileResponse, error)
	GetByID(id string) (*dto.QualityProfileResponse, error)
	List() ([]*dto.QualityProfileResponse, error)
	Update(id string, req *dto.UpdateQualityProfileRequest) (*dto.QualityProfileResponse, error)
	Delete(id string) error

	AddConfigItem(profileID string, req *dto.CreateConfigItemRequest) (*dto.ConfigItemResponse, error)
	ListConfigItems(profileID string) ([]*dto.ConfigItemResponse, error)
	UpdateConfigItem(id string, req *dto.UpdateConfigItemRequest) (*dto.ConfigItemResponse, error)
	RemoveConfigItem(id string) error

	SeedFromFile(path string) (*SeedResult, error)
}

type qualityProfileService struct {
	repo     repository.QualityProfileRepository
	itemRepo repository.ConfigItemRepository
	fs       afero.Fs
}

// QualityProfileServiceOption 可选依赖
type QualityProfileServiceOption func(*qualityProfileService)

// WithSeedFs 读取质量配置清单使用的文件系统, 默认为本地文件系统
func WithSeedFs(fs afero.Fs) QualityProfileServiceOption {
	return func(s *qualityProfileService) {
		s.fs = fs
	}
}

// NewQualityProfileService 创建质量配置服务
func NewQualityProfileService(repo repository.QualityProfileRepository, itemRepo repository.ConfigItemRepository,
	opts ...QualityProfileServiceOption) QualityProfileService {
	s := &qualityProfileService{
		repo:     repo,
		itemRepo: itemRepo,
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 创建质量配置, 名称已存在时冲突
func (s *qualityProfileService) Create(req *dto.CreateQualityProfileRequest) (*dto.QualityProfileResponse, error) {
	exists, err := s.repo.ExistsByName(req.Name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.Conflict("质量配置 %s 已存在", req.Name)
	}

	profile := &model.QualityProfile{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    lo.FromPtrOr(req.IsActive, true),
		Items: lo.Map(req.Items, func(item *dto.CreateConfigItemRequest, _ int) model.ConfigItem {
			return model.ConfigItem{
				Tool:        item.Tool,
				Filename:    item.Filename,
				Content:     item.Content,
				Description: item.Description,
			}
		}),
	}

	if err := s.repo.Create(profile); err != nil {
		return nil, err
	}

	logger.Info("质量配置已创建", zap.String("id", profile.ID), zap.String("name", profile.Name),
		zap.Int("items", len(profile.Items)))
	return s.GetByID(profile.ID)
}

// GetByID 包含配置项与关联项目
func (s *qualityProfileService) GetByID(id string) (*dto.QualityProfileResponse, error) {
	profile, err := s.repo.FindByID(id,
		repository.WithOrderedPreload("Items", configItemOrder),
		repository.WithOrderedPreload("Projects", "name ASC"),
	)
	if err != nil {
		return nil, notFoundAs(err, "质量配置不存在: %s", id)
	}

	resp := toQualityProfileResponse(profile)
	resp.Projects = lo.Map(profile.Projects, func(p model.Project, _ int) *dto.ProjectSimpleResponse {
		return toProjectSimpleResponse(&p)
	})
	return resp, nil
}

// List 按名称升序, 包含配置项
func (s *qualityProfileService) List() ([]*dto.QualityProfileResponse, error) {
	profiles, err := s.repo.List(repository.WithOrderedPreload("Items", configItemOrder))
	if err != nil {
		return nil, err
	}
	return lo.Map(profiles, func(p *model.QualityProfile, _ int) *dto.QualityProfileResponse {
		return toQualityProfileResponse(p)
	}), nil
}

// Update 部分更新
func (s *qualityProfileService) Update(id string, req *dto.UpdateQualityProfileRequest) (*dto.QualityProfileResponse, error) {
	profile, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, "质量配置不存在: %s", id)
	}

	if req.Name != nil && *req.Name != profile.Name {
		exists, err := s.repo.ExistsByName(*req.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, pkgErrors.Conflict("质量配置 %s 已存在", *req.Name)
		}
		profile.Name = *req.Name
	}
	if req.Description != nil {
		profile.Description = req.Description
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := s.repo.Update(profile); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete 删除配置项, 关联项目的 quality_profile_id 置空
func (s *qualityProfileService) Delete(id string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return notFoundAs(err, "质量配置不存在: %s", id)
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Info("质量配置已删除", zap.String("id", id))
	return nil
}

// AddConfigItem 添加配置项, 不对 (tool, filename) 去重
func (s *qualityProfileService) AddConfigItem(profileID string, req *dto.CreateConfigItemRequest) (*dto.ConfigItemResponse, error) {
	if _, err := s.repo.FindByID(profileID); err != nil {
		return nil, notFoundAs(err, "质量配置不存在: %s", profileID)
	}

	item := &model.ConfigItem{
		ProfileID:   profileID,
		Tool:        req.Tool,
		Filename:    req.Filename,
		Content:     req.Content,
		Description: req.Description,
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return toConfigItemResponse(item), nil
}

// ListConfigItems 按 (tool, filename) 升序
func (s *qualityProfileService) ListConfigItems(profileID string) ([]*dto.ConfigItemResponse, error) {
	if _, err := s.repo.FindByID(profileID); err != nil {
		return nil, notFoundAs(err, "质量配置不存在: %s", profileID)
	}

	items, err := s.itemRepo.ListByProfileID(profileID)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(item *model.ConfigItem, _ int) *dto.ConfigItemResponse {
		return toConfigItemResponse(item)
	}), nil
}

func (s *qualityProfileService) UpdateConfigItem(id string, req *dto.UpdateConfigItemRequest) (*dto.ConfigItemResponse, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, "配置项不存在: %s", id)
	}

	if req.Tool != nil {
		item.Tool = *req.Tool
	}
	if req.Filename != nil {
		item.Filename = *req.Filename
	}
	if req.Content != nil {
		item.Content = *req.Content
	}
	if req.Description != nil {
		item.Description = req.Description
	}

	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return toConfigItemResponse(item), nil
}

func (s *qualityProfileService) RemoveConfigItem(id string) error {
	if _, err := s.itemRepo.FindByID(id); err != nil {
		return notFoundAs(err, "配置项不存在: %s", id)
	}
	return s.itemRepo.Delete(id)
}

func toQualityProfileResponse(profile *model.QualityProfile) *dto.QualityProfileResponse {
	return &dto.QualityProfileResponse{
		ID:          profile.ID,
		Name:        profile.Name,
		Description: profile.Description,
		IsActive:    profile.IsActive,
		Items: lo.Map(profile.Items, func(item model.ConfigItem, _ int) *dto.ConfigItemResponse {
			return toConfigItemResponse(&item)
		}),
		CreatedAt: formatTime(profile.CreatedAt),
		UpdatedAt: formatTime(profile.UpdatedAt),
	}
}

func toConfigItemResponse(item *model.ConfigItem) *dto.ConfigItemResponse {
	return &dto.ConfigItemResponse{
		ID:          item.ID,
		ProfileID:   item.ProfileID,
		Tool:        item.Tool,
		Filename:    item.Filename,
		Content:     item.Content,
		Description: item.Description,
		CreatedAt:   formatTime(item.CreatedAt),
		UpdatedAt:   formatTime(item.UpdatedAt),
	}
}
