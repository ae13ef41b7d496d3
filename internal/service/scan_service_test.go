package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	pkgErrors "quality-scanner/pkg/errors"
)

var clockStart = time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)

func createProject(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	p, err := env.projects.Create(&dto.CreateProjectRequest{Name: name, ProjectKey: name})
	require.NoError(t, err)
	return p.ID
}

// assertFinishedInvariant finished_at 不为空当且仅当状态不是 running
func assertFinishedInvariant(t *testing.T, scan *dto.ScanResponse) {
	t.Helper()
	if scan.Status == "running" {
		assert.Nil(t, scan.FinishedAt)
	} else {
		assert.NotNil(t, scan.FinishedAt)
	}
}

func TestScanLifecycle(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")

	scan, err := env.scans.Start(projectID, &dto.StartScanRequest{BranchName: lo.ToPtr("main"), PRKey: lo.ToPtr("42")})
	require.NoError(t, err)
	assert.Equal(t, "running", scan.Status)
	assert.Equal(t, "20240102103001", scan.ScanCode)
	assert.Len(t, scan.ScanCode, 14)
	assert.Equal(t, "main", *scan.BranchName)
	assert.Equal(t, "42", *scan.PRKey)
	assert.Zero(t, scan.ErrorsCount)
	assertFinishedInvariant(t, scan)

	phase, err := env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{
		Tool: "eslint", Status: "pass", Summary: "clean",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(phase.Details))

	_, err = env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{
		Tool: "jest", Status: "warn", Summary: "coverage 70%",
		Details:    json.RawMessage(`{"coverage":70}`),
		DurationMs: lo.ToPtr(int64(1200)),
	})
	require.NoError(t, err)

	// 记录阶段不改变扫描
	detail, err := env.scans.GetByID(scan.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", detail.Status)
	assert.Zero(t, detail.WarningsCount)
	require.NotNil(t, detail.Project)
	assert.Equal(t, "svc-a", detail.Project.Name)
	require.Len(t, detail.PhaseResults, 2)
	assert.Equal(t, "eslint", detail.PhaseResults[0].Tool)
	assert.Equal(t, "jest", detail.PhaseResults[1].Tool)
	assert.JSONEq(t, `{"coverage":70}`, string(detail.PhaseResults[1].Details))

	phases, err := env.scans.ListPhases(scan.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, "eslint", phases[0].Tool)

	finalized, err := env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{
		Status: lo.ToPtr("passed"), ErrorsCount: lo.ToPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "passed", finalized.Status)
	assertFinishedInvariant(t, finalized)
	assert.Equal(t, "main", *finalized.BranchName)
}

func TestScanFinalizePartialMerge(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")

	scan, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	// 只更新计数, 仍在运行
	updated, err := env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{ErrorsCount: lo.ToPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "running", updated.Status)
	assert.Equal(t, 3, updated.ErrorsCount)
	assertFinishedInvariant(t, updated)

	updated, err = env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{
		Status: lo.ToPtr("failed"), WarningsCount: lo.ToPtr(5), DurationSeconds: lo.ToPtr(90),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ErrorsCount)
	assert.Equal(t, 5, updated.WarningsCount)
	assert.Equal(t, 90, *updated.DurationSeconds)
	assertFinishedInvariant(t, updated)
	first := *updated.FinishedAt

	// 重复调用刷新 finished_at
	again, err := env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("failed")})
	require.NoError(t, err)
	require.NotNil(t, again.FinishedAt)
	assert.NotEqual(t, first, *again.FinishedAt)

	// 回到 running 时清空 finished_at
	back, err := env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("running")})
	require.NoError(t, err)
	assertFinishedInvariant(t, back)

	stored, err := env.scans.GetByID(scan.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", stored.Status)
	assert.Nil(t, stored.FinishedAt)
}

func TestScanFinalizeRejectsSkipped(t *testing.T) {
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")

	scan, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	_, err = env.scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("skipped")})
	assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err))
}

func TestScanNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	missing := "5f0c3c2e-8d5b-4c4b-9b8e-2f5d1e0a1b2c"

	_, err := env.scans.Start(missing, &dto.StartScanRequest{})
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.GetByID(missing)
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.Finalize(missing, &dto.FinalizeScanRequest{})
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.RecordPhase(missing, &dto.RecordPhaseRequest{Tool: "eslint", Status: "pass"})
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.ListPhases(missing)
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.ListByProject(missing)
	assert.True(t, pkgErrors.IsNotFound(err))

	_, err = env.scans.GetLatest(missing)
	assert.True(t, pkgErrors.IsNotFound(err))
}

func TestScanListCappedAndOrdered(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")
	otherID := createProject(t, env, "svc-b")

	var lastID string
	for i := 0; i < 55; i++ {
		scan, err := env.scans.Start(projectID, &dto.StartScanRequest{})
		require.NoError(t, err)
		lastID = scan.ID
	}
	_, err := env.scans.Start(otherID, &dto.StartScanRequest{})
	require.NoError(t, err)

	scans, err := env.scans.ListByProject(projectID)
	require.NoError(t, err)
	require.Len(t, scans, 50)
	assert.Equal(t, lastID, scans[0].ID)
	for i := 1; i < len(scans); i++ {
		assert.Greater(t, scans[i-1].ScanCode, scans[i].ScanCode)
		assert.Equal(t, projectID, scans[i].ProjectID)
	}
}

func TestScanGetLatest(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")

	latest, err := env.scans.GetLatest(projectID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	second, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	_, err = env.scans.RecordPhase(second.ID, &dto.RecordPhaseRequest{Tool: "gitleaks", Status: "pass"})
	require.NoError(t, err)

	latest, err = env.scans.GetLatest(projectID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	require.Len(t, latest.PhaseResults, 1)
	assert.Equal(t, "gitleaks", latest.PhaseResults[0].Tool)
}

func TestRecordPhaseDetails(t *testing.T) {
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")
	scan, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	for _, raw := range []string{`null`, `  `, ``} {
		phase, err := env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{
			Tool: "knip", Status: "skip", Details: json.RawMessage(raw),
		})
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(phase.Details))
	}

	phase, err := env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{
		Tool: "eslint", Status: "fail", Details: json.RawMessage(`[{"file":"a.ts","line":3}]`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"file":"a.ts","line":3}]`, string(phase.Details))

	for _, raw := range []string{`"text"`, `42`, `true`} {
		_, err := env.scans.RecordPhase(scan.ID, &dto.RecordPhaseRequest{
			Tool: "eslint", Status: "fail", Details: json.RawMessage(raw),
		})
		assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err), raw)
	}
}

func TestReapStale(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")

	stale, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	done, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	_, err = env.scans.Finalize(done.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("passed")})
	require.NoError(t, err)

	// 把 stale 的开始时间推到很久以前
	require.NoError(t, env.db.Model(&model.Scan{}).Where("id = ?", stale.ID).
		Update("started_at", clockStart.Add(-3*time.Hour)).Error)
	fresh, err := env.scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	reaped, err := env.scans.ReapStale(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	got, err := env.scans.GetByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.NotNil(t, got.FinishedAt)

	got, err = env.scans.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", got.Status)

	got, err = env.scans.GetByID(done.ID)
	require.NoError(t, err)
	assert.Equal(t, "passed", got.Status)
}
