package archive

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"quality-scanner/internal/pkg/logger"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
)

// ScanSummary 由 <date>/<scanId>/summary.json 还原的扫描摘要
type ScanSummary struct {
	Date       string  `json:"date"`
	ScanID     string  `json:"scan_id"`
	Project    string  `json:"project"`
	GateStatus string  `json:"gate_status"`
	Duration   float64 `json:"duration"`
	Errors     int     `json:"errors"`
	Warnings   int     `json:"warnings"`
	Timestamp  string  `json:"timestamp"`
}

// Reader 只读访问扫描进程写入的报告目录:
//
//	<root>/<date>/<scanId>/summary.json
//	<root>/<date>/<scanId>/<tool>.json
type Reader struct {
	fs   afero.Fs
	root string
}

// NewReader 读取本地目录
func NewReader(root string) *Reader {
	return NewReaderFs(afero.NewReadOnlyFs(afero.NewOsFs()), root)
}

// NewReaderFs 使用指定文件系统
func NewReaderFs(fs afero.Fs, root string) *Reader {
	return &Reader{fs: fs, root: root}
}

// Root 报告根目录
func (r *Reader) Root() string {
	return r.root
}

// ListScans 日期倒序, 同一日期内 scanId 倒序.
// summary.json 缺失或无法解析的目录直接跳过, 根目录不存在时返回空列表.
func (r *Reader) ListScans() ([]*ScanSummary, error) {
	summaries := make([]*ScanSummary, 0)

	dates, err := r.subdirs(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summaries, nil
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "读取报告目录失败", err)
	}

	for _, date := range dates {
		scanIDs, err := r.subdirs(filepath.Join(r.root, date))
		if err != nil {
			// 扫描进程可能正在写入, 单个日期目录出错不影响整体
			logger.Warn("读取报告日期目录失败", zap.String("date", date), zap.Error(err))
			continue
		}
		for _, scanID := range scanIDs {
			summary, ok := r.readSummary(date, scanID)
			if !ok {
				continue
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// GetScanDetail 返回目录下每个 .json 文件, 键为去掉扩展名的文件名.
// 无法解析的文件以错误标记代替, 保留不超过 500 个字符的原始内容.
func (r *Reader) GetScanDetail(date, scanID string) (map[string]interface{}, error) {
	if !isSegment(date) || !isSegment(scanID) {
		return nil, pkgErrors.BadRequest("无效的报告路径: %s/%s", date, scanID)
	}

	dir := filepath.Join(r.root, date, scanID)
	info, err := r.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgErrors.NotFound("报告不存在: %s/%s", date, scanID)
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "读取报告目录失败", err)
	}
	if !info.IsDir() {
		return nil, pkgErrors.NotFound("报告不存在: %s/%s", date, scanID)
	}

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "读取报告目录失败", err)
	}

	detail := make(map[string]interface{})
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, constants.ArchiveExtension) {
			continue
		}
		artifact := strings.TrimSuffix(name, constants.ArchiveExtension)
		detail[artifact] = r.readArtifact(filepath.Join(dir, name))
	}

	return detail, nil
}

func (r *Reader) readArtifact(path string) interface{} {
	raw, err := afero.ReadFile(r.fs, path)
	if err != nil {
		logger.Warn("读取报告文件失败", zap.String("path", path), zap.Error(err))
		return errorMarker(constants.ArchiveUnreadable, "")
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errorMarker(constants.ArchiveInvalidJSON, preview(string(raw)))
	}
	return payload
}

func (r *Reader) readSummary(date, scanID string) (*ScanSummary, bool) {
	raw, err := afero.ReadFile(r.fs, filepath.Join(r.root, date, scanID, constants.ArchiveSummaryFile))
	if err != nil {
		return nil, false
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}

	return &ScanSummary{
		Date:       date,
		ScanID:     scanID,
		Project:    stringField(fields, "project", constants.ArchiveUnknownProject),
		GateStatus: stringField(fields, "gateStatus", constants.ArchiveUnknownGate),
		Duration:   numberField(fields, "duration"),
		Errors:     int(numberField(fields, "errors")),
		Warnings:   int(numberField(fields, "warnings")),
		Timestamp:  stringField(fields, "timestamp", ""),
	}, true
}

// subdirs 子目录名称, 倒序
func (r *Reader) subdirs(path string) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func errorMarker(reason, raw string) map[string]interface{} {
	return map[string]interface{}{
		"error": reason,
		"raw":   raw,
	}
}

// preview 按字符截断
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= constants.ArchiveRawPreview {
		return s
	}
	return string(runes[:constants.ArchiveRawPreview])
}

func stringField(fields map[string]interface{}, key, def string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return def
}

func numberField(fields map[string]interface{}, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}

// isSegment 单个路径段, 不允许分隔符与 . ..
func isSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, os.PathSeparator)
}
