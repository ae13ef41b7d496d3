package dto

// CreateProjectRequest 注册项目请求, 未传的开关使用默认值
type CreateProjectRequest struct {
	Name          string  `json:"name" binding:"required,max=255"`
	ProjectKey    string  `json:"project_key" binding:"required,max=255"`
	RepositoryURL *string `json:"repository_url" binding:"omitempty,url,max=500"`
	Description   *string `json:"description"`

	SonarHostURL *string `json:"sonar_host_url" binding:"omitempty,url,max=500"`
	SonarToken   *string `json:"sonar_token" binding:"omitempty,max=500"`

	ProjectToggles

	APILintSeverity   *string `json:"api_lint_severity" binding:"omitempty,max=20"`
	InfraScanSeverity *string `json:"infra_scan_severity" binding:"omitempty,max=20"`

	QualityProfileID *string `json:"quality_profile_id" binding:"omitempty,uuid"`
}

// UpdateProjectRequest 部分更新, 未传字段保持不变; quality_profile_id 传空字符串解除关联
type UpdateProjectRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	ProjectKey    *string `json:"project_key" binding:"omitempty,min=1,max=255"`
	RepositoryURL *string `json:"repository_url" binding:"omitempty,url,max=500"`
	Description   *string `json:"description"`

	SonarHostURL *string `json:"sonar_host_url" binding:"omitempty,url,max=500"`
	SonarToken   *string `json:"sonar_token" binding:"omitempty,max=500"`

	ProjectToggles

	APILintSeverity   *string `json:"api_lint_severity" binding:"omitempty,min=1,max=20"`
	InfraScanSeverity *string `json:"infra_scan_severity" binding:"omitempty,min=1,max=20"`

	QualityProfileID *string `json:"quality_profile_id" binding:"omitempty,uuid"`
}

// ProjectToggles 各工具阶段开关
type ProjectToggles struct {
	EnableGitleaks   *bool `json:"enable_gitleaks"`
	EnableTypescript *bool `json:"enable_typescript"`
	EnableESLint     *bool `json:"enable_eslint"`
	EnablePrettier   *bool `json:"enable_prettier"`
	EnableAudit      *bool `json:"enable_audit"`
	EnableKnip       *bool `json:"enable_knip"`
	EnableJest       *bool `json:"enable_jest"`
	EnableSonarqube  *bool `json:"enable_sonarqube"`
	EnableAPILint    *bool `json:"enable_api_lint"`
	EnableInfraScan  *bool `json:"enable_infra_scan"`
}

// ProjectListQuery 项目列表查询参数
type ProjectListQuery struct {
	Key string `form:"key" binding:"omitempty,max=255"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ProjectKey    string  `json:"project_key"`
	RepositoryURL *string `json:"repository_url"`
	Description   *string `json:"description"`

	SonarHostURL string  `json:"sonar_host_url"`
	SonarToken   *string `json:"sonar_token"`

	EnableGitleaks   bool `json:"enable_gitleaks"`
	EnableTypescript bool `json:"enable_typescript"`
	EnableESLint     bool `json:"enable_eslint"`
	EnablePrettier   bool `json:"enable_prettier"`
	EnableAudit      bool `json:"enable_audit"`
	EnableKnip       bool `json:"enable_knip"`
	EnableJest       bool `json:"enable_jest"`
	EnableSonarqube  bool `json:"enable_sonarqube"`
	EnableAPILint    bool `json:"enable_api_lint"`
	EnableInfraScan  bool `json:"enable_infra_scan"`

	APILintSeverity   string `json:"api_lint_severity"`
	InfraScanSeverity string `json:"infra_scan_severity"`

	QualityProfileID *string `json:"quality_profile_id"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ProjectDetailResponse 项目详情, 包含扫描记录
type ProjectDetailResponse struct {
	ProjectResponse
	Scans []*ScanResponse `json:"scans"`
}

// ProjectSimpleResponse 项目简单响应
type ProjectSimpleResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProjectKey string `json:"project_key"`
}

// ConfigBundleResponse 扫描前写入工作目录的配置文件集合
type ConfigBundleResponse struct {
	ProfileName string        `json:"profile_name"`
	Configs     []*ConfigFile `json:"configs"`
}

// ConfigFile 单个配置文件
type ConfigFile struct {
	Tool     string `json:"tool"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
