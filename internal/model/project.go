package model

const ProjectTableName = "projects"

// Project 被扫描的代码仓库
type Project struct {
	BaseModel
	Name          string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ProjectKey    string  `gorm:"column:project_key;size:255;not null;uniqueIndex" json:"project_key"`
	RepositoryURL *string `gorm:"column:repository_url;size:500" json:"repository_url"`
	Description   *string `gorm:"type:text" json:"description"`

	// 分析工具
	SonarHostURL string  `gorm:"column:sonar_host_url;size:500;not null" json:"sonar_host_url"`
	SonarToken   *string `gorm:"column:sonar_token;size:1000" json:"-"` // crypto.secret 配置时为密文

	// 工具开关
	EnableGitleaks   bool `gorm:"not null" json:"enable_gitleaks"`
	EnableTypescript bool `gorm:"not null" json:"enable_typescript"`
	EnableESLint     bool `gorm:"column:enable_eslint;not null" json:"enable_eslint"`
	EnablePrettier   bool `gorm:"not null" json:"enable_prettier"`
	EnableAudit      bool `gorm:"not null" json:"enable_audit"`
	EnableKnip       bool `gorm:"not null" json:"enable_knip"`
	EnableJest       bool `gorm:"not null" json:"enable_jest"`
	EnableSonarqube  bool `gorm:"not null" json:"enable_sonarqube"`
	EnableAPILint    bool `gorm:"column:enable_api_lint;not null" json:"enable_api_lint"`
	EnableInfraScan  bool `gorm:"not null" json:"enable_infra_scan"`

	APILintSeverity   string `gorm:"column:api_lint_severity;size:20;not null" json:"api_lint_severity"`
	InfraScanSeverity string `gorm:"size:20;not null" json:"infra_scan_severity"`

	QualityProfileID *string `gorm:"size:36;index" json:"quality_profile_id"`

	// 关联关系
	QualityProfile *QualityProfile `gorm:"foreignKey:QualityProfileID" json:"quality_profile,omitempty"`
	Scans          []Scan          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"scans,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}
