package model

import "time"

type ActivityType string

const (
	ActivityTraining ActivityType = "training"
	ActivityReview   ActivityType = "review"
)

// TrainingSession brackets one module-engagement period. At most one open
// session (EndTime == nil) per (user, module) pair is well-defined.
type TrainingSession struct {
	UUIDBase
	UserID          string       `gorm:"size:36;index:idx_session_user_module;not null" json:"userId"`
	ModuleID        string       `gorm:"size:100;index:idx_session_user_module;not null" json:"moduleId"`
	StartTime       time.Time    `gorm:"not null" json:"startTime"`
	EndTime         *time.Time   `json:"endTime"`
	DurationSeconds int          `gorm:"default:0" json:"durationSeconds"`
	ActivityType    ActivityType `gorm:"size:20;default:'training'" json:"activityType"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}
