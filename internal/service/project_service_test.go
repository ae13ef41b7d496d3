package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/crypto"
	pkgErrors "quality-scanner/pkg/errors"
)

func TestProjectCreateDefaults(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "http://sonarqube:9000", p.SonarHostURL)
	assert.True(t, p.EnableGitleaks)
	assert.True(t, p.EnableSonarqube)
	assert.False(t, p.EnableAPILint)
	assert.False(t, p.EnableInfraScan)
	assert.Equal(t, "warn", p.APILintSeverity)
	assert.Equal(t, "HIGH", p.InfraScanSeverity)
	assert.Nil(t, p.QualityProfileID)
	assert.Nil(t, p.SonarToken)

	byKey, err := env.projects.GetByKey("svc-a")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byKey.ID)

	byID, err := env.projects.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "svc-a", byID.Name)
	assert.Empty(t, byID.Scans)
}

func TestProjectCreateExplicitFalseToggle(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.projects.Create(&dto.CreateProjectRequest{
		Name:       "svc-a",
		ProjectKey: "svc-a",
		ProjectToggles: dto.ProjectToggles{
			EnableJest:    lo.ToPtr(false),
			EnableAPILint: lo.ToPtr(true),
		},
	})
	require.NoError(t, err)

	got, err := env.projects.GetByID(p.ID)
	require.NoError(t, err)
	assert.False(t, got.EnableJest)
	assert.True(t, got.EnableAPILint)
	assert.True(t, got.EnableKnip)
}

func TestProjectCreateConflict(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)

	// 名称冲突
	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-b"})
	assert.True(t, pkgErrors.IsConflict(err))

	// key 冲突
	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-b", ProjectKey: "svc-a"})
	assert.True(t, pkgErrors.IsConflict(err))

	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-b", ProjectKey: "svc-b"})
	assert.NoError(t, err)
}

func TestProjectNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	missing := "5f0c3c2e-8d5b-4c4b-9b8e-2f5d1e0a1b2c"

	_, err := env.projects.GetByID(missing)
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.projects.GetByKey("nope")
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.projects.Update(missing, &dto.UpdateProjectRequest{})
	assert.True(t, pkgErrors.IsNotFound(err))

	assert.True(t, pkgErrors.IsNotFound(env.projects.Delete(missing)))

	_, err = env.projects.ResolveConfigs("nope")
	assert.True(t, pkgErrors.IsNotFound(err))
}

func TestProjectPartialUpdate(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.projects.Create(&dto.CreateProjectRequest{
		Name:          "svc-a",
		ProjectKey:    "svc-a",
		Description:   lo.ToPtr("first"),
		RepositoryURL: lo.ToPtr("https://git.example.com/svc-a"),
	})
	require.NoError(t, err)

	updated, err := env.projects.Update(p.ID, &dto.UpdateProjectRequest{
		Description:    lo.ToPtr("second"),
		ProjectToggles: dto.ProjectToggles{EnableESLint: lo.ToPtr(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, "svc-a", updated.Name)
	assert.Equal(t, "svc-a", updated.ProjectKey)
	assert.Equal(t, "second", *updated.Description)
	assert.Equal(t, "https://git.example.com/svc-a", *updated.RepositoryURL)
	assert.False(t, updated.EnableESLint)
	assert.True(t, updated.EnablePrettier)

	got, err := env.projects.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", *got.Description)
	assert.False(t, got.EnableESLint)
}

func TestProjectUpdateConflict(t *testing.T) {
	env := newTestEnv(t, nil)

	a, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)
	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-b", ProjectKey: "svc-b"})
	require.NoError(t, err)

	_, err = env.projects.Update(a.ID, &dto.UpdateProjectRequest{ProjectKey: lo.ToPtr("svc-b")})
	assert.True(t, pkgErrors.IsConflict(err))

	// 保持自身名称不算冲突
	_, err = env.projects.Update(a.ID, &dto.UpdateProjectRequest{Name: lo.ToPtr("svc-a")})
	assert.NoError(t, err)
}

func TestProjectDeleteCascades(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)
	other, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-b", ProjectKey: "svc-b"})
	require.NoError(t, err)

	scan, err := env.scans.Start(p.ID, &dto.StartScanRequest{})
	require.NoError(t, err)
	_, err = env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{Tool: "eslint", Status: "pass"})
	require.NoError(t, err)

	otherScan, err := env.scans.Start(other.ID, &dto.StartScanRequest{})
	require.NoError(t, err)
	_, err = env.scans.RecordPhase(otherScan.ID, &dto.RecordPhaseRequest{Tool: "jest", Status: "fail"})
	require.NoError(t, err)

	require.NoError(t, env.projects.Delete(p.ID))

	var count int64
	require.NoError(t, env.db.Model(&model.Scan{}).Where("project_id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&model.PhaseResult{}).Where("scan_id = ?", scan.ID).Count(&count).Error)
	assert.Zero(t, count)

	// 其他项目不受影响
	require.NoError(t, env.db.Model(&model.PhaseResult{}).Where("scan_id = ?", otherScan.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = env.scans.GetByID(scan.ID)
	assert.True(t, pkgErrors.IsNotFound(err))
}

func TestProjectProfileLink(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.projects.Create(&dto.CreateProjectRequest{
		Name:             "svc-a",
		ProjectKey:       "svc-a",
		QualityProfileID: lo.ToPtr("5f0c3c2e-8d5b-4c4b-9b8e-2f5d1e0a1b2c"),
	})
	assert.True(t, pkgErrors.IsNotFound(err))

	profile, err := env.profiles.Create(&dto.CreateQualityProfileRequest{Name: "Strict"})
	require.NoError(t, err)

	p, err := env.projects.Create(&dto.CreateProjectRequest{
		Name:             "svc-a",
		ProjectKey:       "svc-a",
		QualityProfileID: lo.ToPtr(profile.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, p.QualityProfileID)
	assert.Equal(t, profile.ID, *p.QualityProfileID)

	// 空字符串解除关联
	p, err = env.projects.Update(p.ID, &dto.UpdateProjectRequest{QualityProfileID: lo.ToPtr("")})
	require.NoError(t, err)
	assert.Nil(t, p.QualityProfileID)
}

func TestResolveConfigs(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)

	bundle, err := env.projects.ResolveConfigs("svc-a")
	require.NoError(t, err)
	assert.Equal(t, "", bundle.ProfileName)
	assert.NotNil(t, bundle.Configs)
	assert.Empty(t, bundle.Configs)

	profile, err := env.profiles.Create(&dto.CreateQualityProfileRequest{Name: "Strict"})
	require.NoError(t, err)
	_, err = env.profiles.AddConfigItem(profile.ID, &dto.CreateConfigItemRequest{
		Tool: "eslint", Filename: ".eslintrc.js", Content: "module.exports = {}",
	})
	require.NoError(t, err)

	_, err = env.projects.Update(p.ID, &dto.UpdateProjectRequest{QualityProfileID: lo.ToPtr(profile.ID)})
	require.NoError(t, err)

	bundle, err = env.projects.ResolveConfigs("svc-a")
	require.NoError(t, err)
	assert.Equal(t, "Strict", bundle.ProfileName)
	assert.Equal(t, []*dto.ConfigFile{
		{Tool: "eslint", Filename: ".eslintrc.js", Content: "module.exports = {}"},
	}, bundle.Configs)
}

func TestSonarTokenSealed(t *testing.T) {
	sealer, err := crypto.NewSealer("secret")
	require.NoError(t, err)
	env := newTestEnv(t, sealer)

	p, err := env.projects.Create(&dto.CreateProjectRequest{
		Name: "svc-a", ProjectKey: "svc-a", SonarToken: lo.ToPtr("squ_abc"),
	})
	require.NoError(t, err)
	require.NotNil(t, p.SonarToken)
	assert.Equal(t, "squ_abc", *p.SonarToken)

	var stored model.Project
	require.NoError(t, env.db.Where("id = ?", p.ID).First(&stored).Error)
	require.NotNil(t, stored.SonarToken)
	assert.NotEqual(t, "squ_abc", *stored.SonarToken)

	// 无法解密时返回空
	require.NoError(t, env.db.Model(&model.Project{}).Where("id = ?", p.ID).Update("sonar_token", "garbage").Error)
	got, err := env.projects.GetByID(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SonarToken)
}

func TestProjectList(t *testing.T) {
	env := newTestEnv(t, nil)

	list, err := env.projects.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-a", ProjectKey: "svc-a"})
	require.NoError(t, err)
	_, err = env.projects.Create(&dto.CreateProjectRequest{Name: "svc-b", ProjectKey: "svc-b"})
	require.NoError(t, err)

	list, err = env.projects.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
