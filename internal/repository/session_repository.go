package repository

import (
	"techtrain_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// FindOpen returns the most recent session without an end time for the
// (user, module) pair, or gorm.ErrRecordNotFound.
func (r *SessionRepository) FindOpen(userID, moduleID string) (*model.TrainingSession, error) {
	var session model.TrainingSession
	err := r.DB.
		Where("user_id = ? AND module_id = ? AND end_time IS NULL", userID, moduleID).
		Order("start_time desc").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(session *model.TrainingSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) Update(session *model.TrainingSession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) FindByUser(userID string) ([]model.TrainingSession, error) {
	var sessions []model.TrainingSession
	err := r.DB.Where("user_id = ?", userID).Order("start_time desc").Find(&sessions).Error
	return sessions, err
}
