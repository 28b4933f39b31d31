package service

import (
	"crypto/sha256"
	"fmt"
	"time"

	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/model"

	"go.uber.org/zap"
)

// CompletionSnapshot is the immutable record handed to the reporting
// collaborator the moment a module first certifies: the final aggregate,
// the task rows behind it, evidence artifact paths, and a verification
// hash over the identifying fields.
type CompletionSnapshot struct {
	Descriptor       catalog.ModuleDescriptor `json:"descriptor"`
	Progress         model.ModuleProgress     `json:"progress"`
	Tasks            []model.TaskProgress     `json:"tasks"`
	Evidence         []string                 `json:"evidence"`
	VerificationHash string                   `json:"verificationHash"`
	GeneratedAt      time.Time                `json:"generatedAt"`
}

func NewCompletionSnapshot(desc *catalog.ModuleDescriptor, progress *model.ModuleProgress, tasks []model.TaskProgress, now time.Time) CompletionSnapshot {
	var evidence []string
	for _, t := range tasks {
		if t.ScreenshotPath != "" {
			evidence = append(evidence, t.ScreenshotPath)
		}
	}

	completedAt := ""
	if progress.CompletedAt != nil {
		completedAt = progress.CompletedAt.UTC().Format(time.RFC3339)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%s",
		progress.UserID, progress.ModuleID, progress.OverallScore, completedAt)))

	return CompletionSnapshot{
		Descriptor:       *desc,
		Progress:         *progress,
		Tasks:            tasks,
		Evidence:         evidence,
		VerificationHash: fmt.Sprintf("%x", sum[:8]),
		GeneratedAt:      now,
	}
}

// ReportSink receives finalized completion snapshots. Upload and rendering
// live outside the engine; implementations must treat the snapshot as
// read-only.
type ReportSink interface {
	Deliver(snapshot CompletionSnapshot) error
}

// LoggingSink is the default sink: it records the handoff and nothing
// else. The desktop shell swaps in its uploader here.
type LoggingSink struct {
	Log *zap.Logger
}

func (s *LoggingSink) Deliver(snapshot CompletionSnapshot) error {
	s.Log.Info("completion snapshot ready",
		zap.String("user", snapshot.Progress.UserID),
		zap.String("module", snapshot.Progress.ModuleID),
		zap.Float64("score", snapshot.Progress.OverallScore),
		zap.Int("evidence", len(snapshot.Evidence)),
		zap.String("hash", snapshot.VerificationHash),
	)
	return nil
}
