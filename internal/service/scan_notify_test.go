package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-scanner/internal/adapter/notification"
	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	"quality-scanner/internal/repository"
)

type recordingNotifier struct {
	scans    []model.Scan
	projects []string
}

func (r *recordingNotifier) Send(ctx context.Context, msg *notification.NotificationMessage) error {
	return nil
}

func (r *recordingNotifier) SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error {
	r.scans = append(r.scans, *scan)
	r.projects = append(r.projects, projectName)
	return nil
}

func notifyingScanService(env *testEnv, n notification.Notifier) ScanService {
	return NewScanService(
		repository.NewScanRepository(env.db),
		repository.NewPhaseResultRepository(env.db),
		repository.NewProjectRepository(env.db),
		WithNotifier(n),
	)
}

func TestFinalizeNotifiesOnceWhenLeavingRunning(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-a")
	rec := &recordingNotifier{}
	scans := notifyingScanService(env, rec)

	scan, err := scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	// 仍在运行, 不通知
	_, err = scans.Finalize(scan.ID, &dto.FinalizeScanRequest{ErrorsCount: lo.ToPtr(1)})
	require.NoError(t, err)
	assert.Empty(t, rec.scans)

	_, err = scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("failed")})
	require.NoError(t, err)
	require.Len(t, rec.scans, 1)
	assert.Equal(t, "failed", rec.scans[0].Status)
	assert.Equal(t, 1, rec.scans[0].ErrorsCount)
	assert.NotNil(t, rec.scans[0].FinishedAt)
	assert.Equal(t, []string{"svc-a"}, rec.projects)

	// 终态之间的修改不重复通知
	_, err = scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("passed")})
	require.NoError(t, err)
	assert.Len(t, rec.scans, 1)

	// 回到 running 再结束会再次通知
	_, err = scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("running")})
	require.NoError(t, err)
	_, err = scans.Finalize(scan.ID, &dto.FinalizeScanRequest{Status: lo.ToPtr("passed_with_warnings")})
	require.NoError(t, err)
	assert.Len(t, rec.scans, 2)
}

func TestReapStaleNotifies(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-b")
	rec := &recordingNotifier{}
	scans := notifyingScanService(env, rec)

	_, err := scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)

	useClock(t, clockStart.Add(3*time.Hour))
	n, err := scans.ReapStale(2 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.scans, 1)
	assert.Equal(t, "failed", rec.scans[0].Status)
}

// finishingNotifier 第一次通知时由上报方结束另一个扫描
type finishingNotifier struct {
	recordingNotifier
	scans    ScanService
	finishID string
	fired    bool
}

func (f *finishingNotifier) SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error {
	if !f.fired {
		f.fired = true
		if _, err := f.scans.Finalize(f.finishID, &dto.FinalizeScanRequest{Status: lo.ToPtr("passed")}); err != nil {
			return err
		}
	}
	return f.recordingNotifier.SendScanNotification(ctx, scan, projectName)
}

func TestReapStaleSkipsScanFinishedMeanwhile(t *testing.T) {
	useClock(t, clockStart)
	env := newTestEnv(t, nil)
	projectID := createProject(t, env, "svc-c")
	n := &finishingNotifier{}
	scans := notifyingScanService(env, n)
	n.scans = scans

	first, err := scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	second, err := scans.Start(projectID, &dto.StartScanRequest{})
	require.NoError(t, err)
	n.finishID = second.ID

	useClock(t, clockStart.Add(3*time.Hour))
	reaped, err := scans.ReapStale(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	got, err := scans.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)

	got, err = scans.GetByID(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "passed", got.Status)
	assert.NotNil(t, got.FinishedAt)
}
