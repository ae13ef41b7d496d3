package service

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/logger"
)

// seedManifest catalog.seed_file 清单
type seedManifest struct {
	Profiles []seedProfile `yaml:"profiles"`
}

type seedProfile struct {
	Name        string     `yaml:"name"`
	Description *string    `yaml:"description"`
	IsActive    *bool      `yaml:"is_active"`
	Items       []seedItem `yaml:"items"`
}

// seedItem content 与 path 二选一, path 相对于清单文件
type seedItem struct {
	Tool        string  `yaml:"tool"`
	Filename    string  `yaml:"filename"`
	Content     string  `yaml:"content"`
	Path        string  `yaml:"path"`
	Description *string `yaml:"description"`
}

// SeedResult 导入结果
type SeedResult struct {
	Created []string
	Skipped []string
	Failed  []string
}

// SeedFromFile 导入质量配置清单. 已存在的同名配置保持不变;
// 单个配置失败只记录日志, 不影响其余配置.
func (s *qualityProfileService) SeedFromFile(path string) (*SeedResult, error) {
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("读取质量配置清单失败: %w", err)
	}

	var manifest seedManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("解析质量配置清单失败: %w", err)
	}

	baseDir := filepath.Dir(path)
	result := &SeedResult{}
	for _, p := range manifest.Profiles {
		created, err := s.seedProfile(baseDir, p)
		switch {
		case err != nil:
			logger.Error("导入质量配置失败", zap.String("name", p.Name), zap.Error(err))
			result.Failed = append(result.Failed, p.Name)
		case created:
			result.Created = append(result.Created, p.Name)
		default:
			result.Skipped = append(result.Skipped, p.Name)
		}
	}

	logger.Info("质量配置清单导入完成", zap.String("file", path),
		zap.Strings("created", result.Created),
		zap.Strings("skipped", result.Skipped),
		zap.Strings("failed", result.Failed))
	return result, nil
}

func (s *qualityProfileService) seedProfile(baseDir string, p seedProfile) (bool, error) {
	if p.Name == "" {
		return false, fmt.Errorf("name 不能为空")
	}

	exists, err := s.repo.ExistsByName(p.Name, "")
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	items := make([]model.ConfigItem, 0, len(p.Items))
	for i, it := range p.Items {
		content, err := it.load(s.fs, baseDir)
		if err != nil {
			return false, fmt.Errorf("第 %d 个配置项: %w", i+1, err)
		}
		items = append(items, model.ConfigItem{
			Tool:        it.Tool,
			Filename:    it.Filename,
			Content:     content,
			Description: it.Description,
		})
	}

	profile := &model.QualityProfile{
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive == nil || *p.IsActive,
		Items:       items,
	}
	if err := s.repo.Create(profile); err != nil {
		return false, err
	}
	return true, nil
}

func (it seedItem) load(fs afero.Fs, baseDir string) (string, error) {
	if it.Tool == "" || it.Filename == "" {
		return "", fmt.Errorf("tool 与 filename 不能为空")
	}

	content := it.Content
	if it.Path != "" {
		path := it.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		raw, err := afero.ReadFile(fs, path)
		if err != nil {
			return "", fmt.Errorf("读取 %s 失败: %w", it.Path, err)
		}
		content = string(raw)
	}

	if content == "" {
		return "", fmt.Errorf("%s/%s 内容为空", it.Tool, it.Filename)
	}
	return content, nil
}
