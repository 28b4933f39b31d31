package repository

import (
	"techtrain_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindTask(userID, moduleID, taskID string) (*model.TaskProgress, error) {
	var row model.TaskProgress
	err := r.DB.
		Where("user_id = ? AND module_id = ? AND task_id = ?", userID, moduleID, taskID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) TasksForModule(userID, moduleID string) ([]model.TaskProgress, error) {
	var rows []model.TaskProgress
	err := r.DB.
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("task_id").
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) TasksForUser(userID string) ([]model.TaskProgress, error) {
	var rows []model.TaskProgress
	err := r.DB.Where("user_id = ?", userID).Order("module_id, task_id").Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) FindModule(userID, moduleID string) (*model.ModuleProgress, error) {
	var row model.ModuleProgress
	err := r.DB.
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) ModulesForUser(userID string) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Where("user_id = ?", userID).Order("module_id").Find(&rows).Error
	return rows, err
}

// CompletedModuleIDs returns the set of module ids the user has fully
// completed, as consumed by the prerequisite resolver.
func (r *ProgressRepository) CompletedModuleIDs(userID string) (map[string]bool, error) {
	var ids []string
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Pluck("module_id", &ids).Error
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

func (r *ProgressRepository) CountCompletedTasks(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TaskProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompletedModules(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountPerfectScores(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TaskProgress{}).
		Where("user_id = ? AND status = ? AND score = 100", userID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}
