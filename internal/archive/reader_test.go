package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "quality-scanner/pkg/errors"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestListScansMissingRoot(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "nope"))

	scans, err := r.ListScans()
	require.NoError(t, err)
	assert.NotNil(t, scans)
	assert.Empty(t, scans)
}

func TestListScansEmptyRoot(t *testing.T) {
	r := NewReader(t.TempDir())

	scans, err := r.ListScans()
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestListScansOrderingAndDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/reports/2024-01-01/100/summary.json", `{"project":"svc-a","gateStatus":"PASSED","duration":12.5,"errors":1,"warnings":2,"timestamp":"2024-01-01T10:00:00Z"}`)
	writeFile(t, fs, "/reports/2024-01-02/200/summary.json", `{}`)
	writeFile(t, fs, "/reports/2024-01-02/300/summary.json", `{"project":"svc-b","errors":"many"}`)
	writeFile(t, fs, "/reports/README.md", "ignored")

	r := NewReaderFs(fs, "/reports")
	scans, err := r.ListScans()
	require.NoError(t, err)
	require.Len(t, scans, 3)

	assert.Equal(t, "2024-01-02", scans[0].Date)
	assert.Equal(t, "300", scans[0].ScanID)
	assert.Equal(t, "svc-b", scans[0].Project)
	assert.Equal(t, 0, scans[0].Errors)

	assert.Equal(t, "200", scans[1].ScanID)
	assert.Equal(t, "unknown", scans[1].Project)
	assert.Equal(t, "UNKNOWN", scans[1].GateStatus)
	assert.Equal(t, float64(0), scans[1].Duration)
	assert.Equal(t, 0, scans[1].Warnings)
	assert.Equal(t, "", scans[1].Timestamp)

	assert.Equal(t, "2024-01-01", scans[2].Date)
	assert.Equal(t, "svc-a", scans[2].Project)
	assert.Equal(t, "PASSED", scans[2].GateStatus)
	assert.Equal(t, 12.5, scans[2].Duration)
	assert.Equal(t, 1, scans[2].Errors)
	assert.Equal(t, 2, scans[2].Warnings)
	assert.Equal(t, "2024-01-01T10:00:00Z", scans[2].Timestamp)
}

func TestListScansSkipsBrokenSummaries(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/reports/2024-01-01/1/summary.json", `{"project":"ok"}`)
	writeFile(t, fs, "/reports/2024-01-01/2/summary.json", `{not json`)
	writeFile(t, fs, "/reports/2024-01-01/3/eslint.json", `{}`)
	writeFile(t, fs, "/reports/2024-01-01/4/summary.json", `[1,2,3]`)
	writeFile(t, fs, "/reports/2024-01-01/5/summary.json", `null`)

	r := NewReaderFs(fs, "/reports")
	scans, err := r.ListScans()
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "1", scans[0].ScanID)
	assert.Equal(t, "ok", scans[0].Project)
}

func TestGetScanDetail(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2024-01-01", "100")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.json"), []byte(`{"project":"svc-a"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eslint.json"), []byte(`{"tool":"eslint","status":"pass","details":[]}`), 0o644))
	broken := "{" + strings.Repeat("x", 1200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jest.json"), []byte(broken), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	r := NewReader(root)
	detail, err := r.GetScanDetail("2024-01-01", "100")
	require.NoError(t, err)
	require.Len(t, detail, 3)

	summary, ok := detail["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "svc-a", summary["project"])

	eslint, ok := detail["eslint"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pass", eslint["status"])

	jest, ok := detail["jest"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Invalid JSON", jest["error"])
	raw, ok := jest["raw"].(string)
	require.True(t, ok)
	assert.Len(t, []rune(raw), 500)
	assert.True(t, strings.HasPrefix(broken, raw))
}

func TestGetScanDetailShortInvalidKeepsWholeContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/r/d/s/knip.json", "oops")

	detail, err := NewReaderFs(fs, "/r").GetScanDetail("d", "s")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"error": "Invalid JSON", "raw": "oops"}, detail["knip"])
}

func TestGetScanDetailNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/r/2024-01-01/file.json", "{}")
	r := NewReaderFs(fs, "/r")

	_, err := r.GetScanDetail("2024-01-01", "missing")
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = r.GetScanDetail("2024-01-01", "file.json")
	assert.True(t, pkgErrors.IsNotFound(err))
}

func TestGetScanDetailRejectsTraversal(t *testing.T) {
	r := NewReaderFs(afero.NewMemMapFs(), "/r")

	for _, tc := range [][2]string{{"..", "x"}, {"a/b", "x"}, {"a", ".."}, {"a", `..\x`}, {"", "x"}} {
		_, err := r.GetScanDetail(tc[0], tc[1])
		assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err), tc)
	}
}
