package repository

import (
	"techtrain_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MilestoneRepository struct {
	DB *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{DB: db}
}

// InsertIfAbsent records the milestone unless a row for the same
// (user, type) already exists. The check and insert ride on the unique
// index in one statement, so a retried completion cannot duplicate it.
// Returns true when a new row was written.
func (r *MilestoneRepository) InsertIfAbsent(m *model.Milestone) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *MilestoneRepository) FindByUser(userID string) ([]model.Milestone, error) {
	var rows []model.Milestone
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error
	return rows, err
}
