package service

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/crypto"
	"quality-scanner/internal/pkg/logger"
	"quality-scanner/internal/repository"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
)

type ProjectService interface {
	Create(req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(id string) (*dto.ProjectDetailResponse, error)
	GetByKey(projectKey string) (*dto.ProjectResponse, error)
	List() ([]*dto.ProjectResponse, error)
	Update(id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(id string) error
	ResolveConfigs(projectKey string) (*dto.ConfigBundleResponse, error)
}

type projectService struct {
	repo        repository.ProjectRepository
	profileRepo repository.QualityProfileRepository
	itemRepo    repository.ConfigItemRepository
	sealer      crypto.Sealer
}

func NewProjectService(repo repository.ProjectRepository, profileRepo repository.QualityProfileRepository,
	itemRepo repository.ConfigItemRepository, sealer crypto.Sealer) ProjectService {
	return &projectService{
		repo:        repo,
		profileRepo: profileRepo,
		itemRepo:    itemRepo,
		sealer:      sealer,
	}
}

// Create 注册项目, name 或 project_key 任一已存在即冲突
func (s *projectService) Create(req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	exists, err := s.repo.ExistsByNameOrKey(req.Name, req.ProjectKey, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.Conflict("项目名称 %s 或 key %s 已存在", req.Name, req.ProjectKey)
	}

	project := &model.Project{
		Name:          req.Name,
		ProjectKey:    req.ProjectKey,
		RepositoryURL: req.RepositoryURL,
		Description:   req.Description,
		SonarHostURL:  lo.FromPtrOr(req.SonarHostURL, constants.DefaultSonarHostURL),

		EnableGitleaks:   lo.FromPtrOr(req.EnableGitleaks, true),
		EnableTypescript: lo.FromPtrOr(req.EnableTypescript, true),
		EnableESLint:     lo.FromPtrOr(req.EnableESLint, true),
		EnablePrettier:   lo.FromPtrOr(req.EnablePrettier, true),
		EnableAudit:      lo.FromPtrOr(req.EnableAudit, true),
		EnableKnip:       lo.FromPtrOr(req.EnableKnip, true),
		EnableJest:       lo.FromPtrOr(req.EnableJest, true),
		EnableSonarqube:  lo.FromPtrOr(req.EnableSonarqube, true),
		EnableAPILint:    lo.FromPtrOr(req.EnableAPILint, false),
		EnableInfraScan:  lo.FromPtrOr(req.EnableInfraScan, false),

		APILintSeverity:   lo.FromPtrOr(req.APILintSeverity, constants.DefaultAPILintSeverity),
		InfraScanSeverity: lo.FromPtrOr(req.InfraScanSeverity, constants.DefaultInfraScanSeverity),
	}

	if err := s.applySonarToken(project, req.SonarToken); err != nil {
		return nil, err
	}
	if err := s.applyProfile(project, req.QualityProfileID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(project); err != nil {
		return nil, err
	}

	logger.Info("项目已注册", zap.String("id", project.ID), zap.String("project_key", project.ProjectKey))
	return s.toResponse(project), nil
}

// GetByID 项目详情, 包含扫描记录(最新的在前)
func (s *projectService) GetByID(id string) (*dto.ProjectDetailResponse, error) {
	project, err := s.repo.FindByID(id, repository.WithOrderedPreload("Scans", "created_at DESC"))
	if err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", id)
	}

	return &dto.ProjectDetailResponse{
		ProjectResponse: *s.toResponse(project),
		Scans: lo.Map(project.Scans, func(scan model.Scan, _ int) *dto.ScanResponse {
			return toScanResponse(&scan)
		}),
	}, nil
}

func (s *projectService) GetByKey(projectKey string) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByKey(projectKey)
	if err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", projectKey)
	}
	return s.toResponse(project), nil
}

// List 最新注册的在前
func (s *projectService) List() ([]*dto.ProjectResponse, error) {
	projects, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectResponse {
		return s.toResponse(p)
	}), nil
}

// Update 只覆盖请求中出现的字段
func (s *projectService) Update(id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", id)
	}

	if req.Name != nil || req.ProjectKey != nil {
		name := lo.FromPtrOr(req.Name, project.Name)
		key := lo.FromPtrOr(req.ProjectKey, project.ProjectKey)
		exists, err := s.repo.ExistsByNameOrKey(name, key, project.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, pkgErrors.Conflict("项目名称 %s 或 key %s 已存在", name, key)
		}
		project.Name = name
		project.ProjectKey = key
	}

	if req.RepositoryURL != nil {
		project.RepositoryURL = req.RepositoryURL
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.SonarHostURL != nil {
		project.SonarHostURL = *req.SonarHostURL
	}
	if req.APILintSeverity != nil {
		project.APILintSeverity = *req.APILintSeverity
	}
	if req.InfraScanSeverity != nil {
		project.InfraScanSeverity = *req.InfraScanSeverity
	}
	mergeToggles(project, &req.ProjectToggles)

	if req.SonarToken != nil {
		if err := s.applySonarToken(project, req.SonarToken); err != nil {
			return nil, err
		}
	}
	if req.QualityProfileID != nil {
		if err := s.applyProfile(project, req.QualityProfileID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(project); err != nil {
		return nil, err
	}

	return s.toResponse(project), nil
}

// Delete 删除项目, 级联删除扫描与阶段结果
func (s *projectService) Delete(id string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return notFoundAs(err, "项目不存在: %s", id)
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Info("项目已删除", zap.String("id", id))
	return nil
}

// ResolveConfigs 扫描前获取项目关联的配置文件, 未关联质量配置时返回空集合
func (s *projectService) ResolveConfigs(projectKey string) (*dto.ConfigBundleResponse, error) {
	project, err := s.repo.FindByKey(projectKey)
	if err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", projectKey)
	}

	bundle := &dto.ConfigBundleResponse{
		ProfileName: "",
		Configs:     make([]*dto.ConfigFile, 0),
	}
	if project.QualityProfileID == nil {
		return bundle, nil
	}

	profile, err := s.profileRepo.FindByID(*project.QualityProfileID)
	if err != nil {
		if pkgErrors.IsNotFound(err) {
			logger.Warn("项目关联的质量配置不存在", zap.String("project_key", projectKey),
				zap.String("quality_profile_id", *project.QualityProfileID))
			return bundle, nil
		}
		return nil, err
	}

	items, err := s.itemRepo.ListByProfileID(profile.ID)
	if err != nil {
		return nil, err
	}

	bundle.ProfileName = profile.Name
	bundle.Configs = lo.Map(items, func(item *model.ConfigItem, _ int) *dto.ConfigFile {
		return &dto.ConfigFile{
			Tool:     item.Tool,
			Filename: item.Filename,
			Content:  item.Content,
		}
	})
	return bundle, nil
}

// applyProfile 空字符串解除关联
func (s *projectService) applyProfile(project *model.Project, profileID *string) error {
	if profileID == nil {
		return nil
	}
	if *profileID == "" {
		project.QualityProfileID = nil
		return nil
	}
	if _, err := s.profileRepo.FindByID(*profileID); err != nil {
		return notFoundAs(err, "质量配置不存在: %s", *profileID)
	}
	project.QualityProfileID = lo.ToPtr(*profileID)
	return nil
}

// applySonarToken 空字符串清除
func (s *projectService) applySonarToken(project *model.Project, token *string) error {
	if token == nil || *token == "" {
		project.SonarToken = nil
		return nil
	}
	sealed, err := s.sealer.Seal(*token)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "加密 sonar token 失败", err)
	}
	project.SonarToken = &sealed
	return nil
}

func (s *projectService) openSonarToken(project *model.Project) *string {
	if project.SonarToken == nil {
		return nil
	}
	token, err := s.sealer.Open(*project.SonarToken)
	if err != nil {
		logger.Warn("解密 sonar token 失败", zap.String("project_id", project.ID), zap.Error(err))
		return nil
	}
	return &token
}

func mergeToggles(project *model.Project, t *dto.ProjectToggles) {
	if t.EnableGitleaks != nil {
		project.EnableGitleaks = *t.EnableGitleaks
	}
	if t.EnableTypescript != nil {
		project.EnableTypescript = *t.EnableTypescript
	}
	if t.EnableESLint != nil {
		project.EnableESLint = *t.EnableESLint
	}
	if t.EnablePrettier != nil {
		project.EnablePrettier = *t.EnablePrettier
	}
	if t.EnableAudit != nil {
		project.EnableAudit = *t.EnableAudit
	}
	if t.EnableKnip != nil {
		project.EnableKnip = *t.EnableKnip
	}
	if t.EnableJest != nil {
		project.EnableJest = *t.EnableJest
	}
	if t.EnableSonarqube != nil {
		project.EnableSonarqube = *t.EnableSonarqube
	}
	if t.EnableAPILint != nil {
		project.EnableAPILint = *t.EnableAPILint
	}
	if t.EnableInfraScan != nil {
		project.EnableInfraScan = *t.EnableInfraScan
	}
}

func (s *projectService) toResponse(project *model.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		ProjectKey:    project.ProjectKey,
		RepositoryURL: project.RepositoryURL,
		Description:   project.Description,

		SonarHostURL: project.SonarHostURL,
		SonarToken:   s.openSonarToken(project),

		EnableGitleaks:   project.EnableGitleaks,
		EnableTypescript: project.EnableTypescript,
		EnableESLint:     project.EnableESLint,
		EnablePrettier:   project.EnablePrettier,
		EnableAudit:      project.EnableAudit,
		EnableKnip:       project.EnableKnip,
		EnableJest:       project.EnableJest,
		EnableSonarqube:  project.EnableSonarqube,
		EnableAPILint:    project.EnableAPILint,
		EnableInfraScan:  project.EnableInfraScan,

		APILintSeverity:   project.APILintSeverity,
		InfraScanSeverity: project.InfraScanSeverity,
		QualityProfileID:  project.QualityProfileID,

		CreatedAt: formatTime(project.CreatedAt),
		UpdatedAt: formatTime(project.UpdatedAt),
	}
}

func toProjectSimpleResponse(project *model.Project) *dto.ProjectSimpleResponse {
	return &dto.ProjectSimpleResponse{
		ID:         project.ID,
		Name:       project.Name,
		ProjectKey: project.ProjectKey,
	}
}
