package service

import (
	"errors"
	"testing"
	"time"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

func TestStartTaskCreatesRow(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	row, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, row.Status)
	assert.Equal(t, 1, row.Attempts)
	require.NotNil(t, row.StartedAt)
	assert.Nil(t, row.CompletedAt)

	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, progress.Status)
	assert.Equal(t, 3, progress.TotalTasks)
	assert.Equal(t, 0, progress.CompletedTasks)
}

func TestStartTaskIdempotent(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)
	row, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)

	assert.Equal(t, 1, row.Attempts)
}

func TestStartTaskUnknownModuleAndTask(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.progress.StartTask(userID, "ghost", "t1")
	assert.ErrorIs(t, err, util.ErrModuleNotInCatalog)

	_, err = f.progress.StartTask(userID, "net101", "ghost")
	assert.ErrorIs(t, err, util.ErrTaskNotInModule)
}

func TestStartTaskEnforcesPrerequisites(t *testing.T) {
	f := newProgressFixture(t, netManifest, advManifest)

	_, err := f.progress.StartTask(userID, "adv200", "a1")
	assert.ErrorIs(t, err, util.ErrPrerequisitesNotMet)

	for _, task := range []string{"t1", "t2", "t3"} {
		_, err := f.progress.CompleteTask(userID, "net101", task, CompleteTaskInput{Score: score(100)})
		require.NoError(t, err)
	}

	_, err = f.progress.StartTask(userID, "adv200", "a1")
	assert.NoError(t, err)
}

func TestCompleteTaskBackfillsStart(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	row, err := f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(90)})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, row.Status)
	assert.Equal(t, 0, row.Attempts)
	require.NotNil(t, row.StartedAt)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, 0, row.DurationSeconds)
}

func TestCompleteTaskRecordsDuration(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)
	f.advance(45 * time.Second)

	row, err := f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)
	assert.Equal(t, 45, row.DurationSeconds)
}

func TestReattemptKeepsPriorScoreUntilNextCompletion(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)
	_, err = f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(80)})
	require.NoError(t, err)

	row, err := f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, model.StatusInProgress, row.Status)
	require.NotNil(t, row.Score)
	assert.Equal(t, 80.0, *row.Score)
	assert.NotNil(t, row.CompletedAt)

	row, err = f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(95)})
	require.NoError(t, err)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, 95.0, *row.Score)
}

func TestModuleAggregates(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)
	_, err = f.progress.CompleteTask(userID, "net101", "t2", CompleteTaskInput{Score: score(80)})
	require.NoError(t, err)

	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, progress.Status)
	assert.Equal(t, 2, progress.CompletedTasks)
	assert.InDelta(t, 66.67, progress.CompletionPercentage, 0.01)
	assert.InDelta(t, 90.0, progress.OverallScore, 0.001)
	assert.False(t, progress.CertificateIssued)

	_, err = f.progress.CompleteTask(userID, "net101", "t3", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)

	progress, err = f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, progress.Status)
	assert.InDelta(t, 100.0, progress.CompletionPercentage, 0.001)
	assert.InDelta(t, 93.33, progress.OverallScore, 0.01)
	assert.True(t, progress.CertificateIssued)
}

func TestCertificateIsOneWayLatch(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	for _, task := range []string{"t1", "t2", "t3"} {
		_, err := f.progress.CompleteTask(userID, "net101", task, CompleteTaskInput{Score: score(100)})
		require.NoError(t, err)
	}
	require.Len(t, f.sink.snapshots, 1)

	// A re-attempt drops the module back to in_progress but never takes
	// the certificate away.
	_, err := f.progress.StartTask(userID, "net101", "t2")
	require.NoError(t, err)

	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, progress.Status)
	assert.True(t, progress.CertificateIssued)

	// Re-completing does not re-deliver the snapshot.
	_, err = f.progress.CompleteTask(userID, "net101", "t2", CompleteTaskInput{Score: score(95)})
	require.NoError(t, err)
	assert.Len(t, f.sink.snapshots, 1)
}

func TestCertificationRequiresEveryRequiredTask(t *testing.T) {
	manifest := `{
		"id": "req101",
		"tasks": [
			{"id": "r1", "points": 50, "required": true},
			{"id": "r2", "points": 50}
		]
	}`
	f := newProgressFixture(t, manifest)

	// An orphan completed row for a task no longer in the descriptor can
	// push the count to 100% without the required task being done.
	now := f.clock
	orphan := model.TaskProgress{
		UserID:      userID,
		ModuleID:    "req101",
		TaskID:      "ghost",
		Status:      model.StatusCompleted,
		StartedAt:   &now,
		CompletedAt: &now,
	}
	require.NoError(t, f.db.Create(&orphan).Error)

	_, err := f.progress.CompleteTask(userID, "req101", "r2", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)

	progress, err := f.progress.ModuleProgress(userID, "req101")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, progress.CompletionPercentage, 0.001)
	assert.False(t, progress.CertificateIssued)
	assert.Empty(t, f.sink.snapshots)

	_, err = f.progress.CompleteTask(userID, "req101", "r1", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)

	progress, err = f.progress.ModuleProgress(userID, "req101")
	require.NoError(t, err)
	assert.True(t, progress.CertificateIssued)
	assert.Len(t, f.sink.snapshots, 1)
}

type strictUnit struct {
	stubUnit
}

func (u *strictUnit) ValidateTask(taskID string, evidence map[string]string) error {
	if evidence["screenshot"] == "" {
		return errors.New("screenshot required")
	}
	return nil
}

func TestCompleteTaskEvidenceVeto(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	// Replace the unit behind net101 with one that insists on evidence.
	f.reg.Register("net101", "Net101Module", func() (interface{}, error) {
		return &strictUnit{stubUnit{id: "net101"}}, nil
	})

	_, err := f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(100)})
	assert.ErrorIs(t, err, util.ErrEvidenceRejected)

	// The rejected completion left no state behind.
	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedTasks)

	_, err = f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{
		Score:          score(100),
		ScreenshotPath: "evidence/t1.png",
	})
	assert.NoError(t, err)
}

func TestCompletionSnapshotContents(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	for i, task := range []string{"t1", "t2", "t3"} {
		in := CompleteTaskInput{Score: score(100)}
		if i == 0 {
			in.ScreenshotPath = "evidence/t1.png"
		}
		_, err := f.progress.CompleteTask(userID, "net101", task, in)
		require.NoError(t, err)
	}

	require.Len(t, f.sink.snapshots, 1)
	snap := f.sink.snapshots[0]
	assert.Equal(t, "net101", snap.Descriptor.ID)
	assert.Equal(t, userID, snap.Progress.UserID)
	assert.Len(t, snap.Tasks, 3)
	assert.Equal(t, []string{"evidence/t1.png"}, snap.Evidence)
	assert.Len(t, snap.VerificationHash, 16)
}

func TestModuleProgressDefaultsToNotStarted(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotStarted, progress.Status)

	_, err = f.progress.ModuleProgress(userID, "ghost")
	assert.ErrorIs(t, err, util.ErrModuleNotInCatalog)
}

func TestUserProgressReport(t *testing.T) {
	f := newProgressFixture(t, netManifest, advManifest)

	for _, task := range []string{"t1", "t2", "t3"} {
		_, err := f.progress.CompleteTask(userID, "net101", task, CompleteTaskInput{Score: score(90)})
		require.NoError(t, err)
	}
	_, err := f.progress.StartTask(userID, "adv200", "a1")
	require.NoError(t, err)

	report, err := f.progress.UserProgress(userID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Statistics.TotalModules)
	assert.Equal(t, 1, report.Statistics.CompletedModules)
	assert.Equal(t, 4, report.Statistics.TotalTasks)
	assert.Equal(t, 3, report.Statistics.CompletedTasks)
	assert.InDelta(t, 90.0, report.Statistics.AverageScore, 0.001)
	assert.Equal(t, 1, report.Statistics.MaxAttempts)
	assert.NotEmpty(t, report.Milestones)
}
