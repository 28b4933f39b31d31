package service

import (
	"errors"
	"fmt"
	"time"

	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/util"
	"techtrain_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService is the task/module completion state machine. Every
// mutation runs in one transaction and ends with a full recompute of the
// owning ModuleProgress from the task rows, so aggregates can never drift.
type ProgressService struct {
	DB            *gorm.DB
	ProgressRepo  *repository.ProgressRepository
	Loader        *catalog.Loader
	Prerequisites *PrerequisiteService
	Milestones    *MilestoneService
	Sink          ReportSink
	Log           *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	loader *catalog.Loader,
	prerequisites *PrerequisiteService,
	milestones *MilestoneService,
	sink ReportSink,
	log *zap.Logger,
) *ProgressService {
	return &ProgressService{
		DB:            db,
		ProgressRepo:  progressRepo,
		Loader:        loader,
		Prerequisites: prerequisites,
		Milestones:    milestones,
		Sink:          sink,
		Log:           log,
		now:           time.Now,
	}
}

// StartTask transitions a task into in_progress. Starting a fresh task
// creates its row with attempts=1; re-starting a completed task increments
// attempts and keeps the prior score and completion time until the task
// completes again; starting an already in_progress task is a no-op.
func (s *ProgressService) StartTask(userID, moduleID, taskID string) (*model.TaskProgress, error) {
	desc, _, err := s.catalogEntry(moduleID, taskID)
	if err != nil {
		return nil, err
	}

	ok, err := s.Prerequisites.CanStart(userID, moduleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPrerequisitesNotMet
	}

	now := s.now()
	var row model.TaskProgress

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND module_id = ? AND task_id = ?", userID, moduleID, taskID).
			First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = model.TaskProgress{
				UserID:    userID,
				ModuleID:  moduleID,
				TaskID:    taskID,
				Status:    model.StatusInProgress,
				Attempts:  1,
				StartedAt: &now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case row.Status == model.StatusInProgress:
			// Idempotent: repeated start is a no-op.
			return nil
		default:
			// Re-attempt. Prior score and completion time survive until
			// the task actually completes again.
			row.Status = model.StatusInProgress
			row.Attempts++
			row.StartedAt = &now
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}

		_, err = s.recomputeModule(tx, desc, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CompleteTaskInput carries the caller-supplied completion evidence.
// Score is on the 0-100 scale by convention and is not validated against
// the task's point value.
type CompleteTaskInput struct {
	Score          *float64
	ScreenshotPath string
	Notes          string
}

// CompleteTask transitions a task into completed. Completing a task that
// was never started back-fills startedAt to now, modelling instantaneous
// verification-only tasks. On the first time a module reaches full
// required completion the certificate latch is set and a completion
// snapshot is handed to the report sink.
func (s *ProgressService) CompleteTask(userID, moduleID, taskID string, in CompleteTaskInput) (*model.TaskProgress, error) {
	desc, _, err := s.catalogEntry(moduleID, taskID)
	if err != nil {
		return nil, err
	}

	// The executable unit gets a veto over the evidence. Modules without a
	// loadable unit stay trackable as plain descriptors.
	if inst, loadErr := s.Loader.Load(moduleID); loadErr == nil {
		evidence := map[string]string{}
		if in.ScreenshotPath != "" {
			evidence["screenshot"] = in.ScreenshotPath
		}
		if err := inst.ValidateTask(taskID, evidence); err != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrEvidenceRejected, err)
		}
	}

	now := s.now()
	var row model.TaskProgress
	var certified bool
	var progress *model.ModuleProgress

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND module_id = ? AND task_id = ?", userID, moduleID, taskID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.TaskProgress{
				UserID:    userID,
				ModuleID:  moduleID,
				TaskID:    taskID,
				StartedAt: &now,
			}
		} else if err != nil {
			return err
		}

		if row.StartedAt == nil {
			row.StartedAt = &now
		}
		duration := int(now.Sub(*row.StartedAt).Seconds())
		if duration < 0 {
			duration = 0
		}

		row.Status = model.StatusCompleted
		row.CompletedAt = &now
		row.DurationSeconds = duration
		if in.Score != nil {
			row.Score = in.Score
		}
		if in.ScreenshotPath != "" {
			row.ScreenshotPath = in.ScreenshotPath
		}
		if in.Notes != "" {
			row.Notes = in.Notes
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		wasCertified := false
		var prior model.ModuleProgress
		err = tx.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&prior).Error
		if err == nil {
			wasCertified = prior.CertificateIssued
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		progress, err = s.recomputeModule(tx, desc, userID, now)
		if err != nil {
			return err
		}
		certified = progress.CertificateIssued && !wasCertified
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TasksCompleted.Inc()

	// Post-commit side effects. Neither may fail the completion itself.
	s.Milestones.Evaluate(userID)
	if certified {
		monitoring.ModulesCertified.Inc()
		s.deliverSnapshot(desc, userID, progress)
	}
	return &row, nil
}

// RefreshModule recomputes a module's aggregate outside the task
// transitions, e.g. after a session closes.
func (s *ProgressService) RefreshModule(userID, moduleID string) (*model.ModuleProgress, error) {
	desc, err := s.Loader.Descriptor(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotInCatalog
	}
	var progress *model.ModuleProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		progress, txErr = s.recomputeModule(tx, desc, userID, s.now())
		return txErr
	})
	return progress, err
}

// ModuleProgress returns the stored aggregate for one module, or a fresh
// not_started row when the user has never touched it.
func (s *ProgressService) ModuleProgress(userID, moduleID string) (*model.ModuleProgress, error) {
	if _, err := s.Loader.Descriptor(moduleID); err != nil {
		return nil, util.ErrModuleNotInCatalog
	}
	progress, err := s.ProgressRepo.FindModule(userID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.ModuleProgress{
			UserID:   userID,
			ModuleID: moduleID,
			Status:   model.StatusNotStarted,
		}, nil
	}
	return progress, err
}

// UserProgressReport is the complete progress view for one user: module
// aggregates, task rows, milestones, and derived statistics.
type UserProgressReport struct {
	UserID     string                  `json:"userId"`
	Modules    []model.ModuleProgress  `json:"modules"`
	Tasks      []model.TaskProgress    `json:"tasks"`
	Milestones []model.Milestone       `json:"milestones"`
	Statistics UserProgressStatistics  `json:"statistics"`
}

type UserProgressStatistics struct {
	TotalModules     int     `json:"totalModules"`
	CompletedModules int     `json:"completedModules"`
	TotalTasks       int     `json:"totalTasks"`
	CompletedTasks   int     `json:"completedTasks"`
	AverageScore     float64 `json:"averageScore"`
	TotalTimeSeconds int     `json:"totalTimeSeconds"`
	MaxAttempts      int     `json:"maxAttempts"`
}

func (s *ProgressService) UserProgress(userID string) (*UserProgressReport, error) {
	modules, err := s.ProgressRepo.ModulesForUser(userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.ProgressRepo.TasksForUser(userID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.Milestones.Repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := UserProgressStatistics{
		TotalModules: len(modules),
		TotalTasks:   len(tasks),
	}
	for _, m := range modules {
		if m.Status == model.StatusCompleted {
			stats.CompletedModules++
		}
		stats.TotalTimeSeconds += m.TotalDurationSeconds
	}
	var scoreSum float64
	var scored int
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			stats.CompletedTasks++
			if t.Score != nil {
				scoreSum += *t.Score
				scored++
			}
		}
		if t.Attempts > stats.MaxAttempts {
			stats.MaxAttempts = t.Attempts
		}
	}
	if scored > 0 {
		stats.AverageScore = scoreSum / float64(scored)
	}

	return &UserProgressReport{
		UserID:     userID,
		Modules:    modules,
		Tasks:      tasks,
		Milestones: milestones,
		Statistics: stats,
	}, nil
}

func (s *ProgressService) catalogEntry(moduleID, taskID string) (*catalog.ModuleDescriptor, *catalog.TaskDescriptor, error) {
	desc, err := s.Loader.Descriptor(moduleID)
	if err != nil {
		return nil, nil, util.ErrModuleNotInCatalog
	}
	task := desc.Task(taskID)
	if task == nil {
		return nil, nil, util.ErrTaskNotInModule
	}
	return desc, task, nil
}

// recomputeModule rewrites the ModuleProgress aggregate from scratch: task
// counts and percentage from the descriptor's task list, mean score over
// completed tasks only, timestamps from the task rows, and total duration
// as task time plus closed-session time. The certificate flag is a one-way
// latch: once set it survives any later re-attempt.
func (s *ProgressService) recomputeModule(tx *gorm.DB, desc *catalog.ModuleDescriptor, userID string, now time.Time) (*model.ModuleProgress, error) {
	var rows []model.TaskProgress
	if err := tx.Where("user_id = ? AND module_id = ?", userID, desc.ID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	totalTasks := len(desc.Tasks)

	completedByID := make(map[string]bool)
	var completed, started int
	var scoreSum float64
	var scored int
	var taskSeconds int
	var startedAt, completedAt *time.Time

	for i := range rows {
		row := &rows[i]
		if row.StartedAt != nil {
			started++
			if startedAt == nil || row.StartedAt.Before(*startedAt) {
				startedAt = row.StartedAt
			}
		}
		if row.Status != model.StatusCompleted {
			continue
		}
		completed++
		completedByID[row.TaskID] = true
		taskSeconds += row.DurationSeconds
		if row.Score != nil {
			scoreSum += *row.Score
			scored++
		}
		if row.CompletedAt != nil && (completedAt == nil || row.CompletedAt.After(*completedAt)) {
			completedAt = row.CompletedAt
		}
	}

	var percentage float64
	if totalTasks > 0 {
		percentage = float64(completed) / float64(totalTasks) * 100
	}
	var overallScore float64
	if scored > 0 {
		overallScore = scoreSum / float64(scored)
	}

	status := model.StatusNotStarted
	switch {
	case totalTasks > 0 && completed == totalTasks:
		status = model.StatusCompleted
	case started > 0 || completed > 0:
		status = model.StatusInProgress
	}

	var sessionSeconds int
	err := tx.Model(&model.TrainingSession{}).
		Where("user_id = ? AND module_id = ? AND end_time IS NOT NULL", userID, desc.ID).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Scan(&sessionSeconds).Error
	if err != nil {
		return nil, err
	}

	progress := model.ModuleProgress{
		UserID:   userID,
		ModuleID: desc.ID,
	}
	err = tx.Where("user_id = ? AND module_id = ?", userID, desc.ID).First(&progress).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress.Status = status
	progress.CompletionPercentage = percentage
	progress.OverallScore = overallScore
	progress.TotalTasks = totalTasks
	progress.CompletedTasks = completed
	progress.StartedAt = startedAt
	progress.CompletedAt = completedAt
	progress.TotalDurationSeconds = taskSeconds + sessionSeconds

	if !progress.CertificateIssued && s.certifiable(desc, percentage, completedByID) {
		progress.CertificateIssued = true
	}

	if err := tx.Save(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// certifiable requires full completion and every required task completed;
// a module with only optional tasks completed does not certify.
func (s *ProgressService) certifiable(desc *catalog.ModuleDescriptor, percentage float64, completedByID map[string]bool) bool {
	if len(desc.Tasks) == 0 || percentage < 100 {
		return false
	}
	for _, id := range desc.RequiredTaskIDs() {
		if !completedByID[id] {
			return false
		}
	}
	return true
}

func (s *ProgressService) deliverSnapshot(desc *catalog.ModuleDescriptor, userID string, progress *model.ModuleProgress) {
	tasks, err := s.ProgressRepo.TasksForModule(userID, desc.ID)
	if err != nil {
		s.Log.Error("snapshot assembly failed",
			zap.String("user", userID), zap.String("module", desc.ID), zap.Error(err))
		return
	}
	snapshot := NewCompletionSnapshot(desc, progress, tasks, s.now())
	if err := s.Sink.Deliver(snapshot); err != nil {
		s.Log.Error("snapshot delivery failed",
			zap.String("user", userID), zap.String("module", desc.ID), zap.Error(err))
	}
}
