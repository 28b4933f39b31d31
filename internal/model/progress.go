package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// TaskProgress is the per-task state row, unique per (user, module, task).
// Rows are created on the first start event and never deleted, only
// superseded by later attempts.
type TaskProgress struct {
	BaseModel
	UserID          string         `gorm:"size:36;uniqueIndex:idx_task_progress;not null" json:"userId"`
	ModuleID        string         `gorm:"size:100;uniqueIndex:idx_task_progress;not null" json:"moduleId"`
	TaskID          string         `gorm:"size:100;uniqueIndex:idx_task_progress;not null" json:"taskId"`
	Status          ProgressStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	Score           *float64       `json:"score"`
	Attempts        int            `gorm:"default:0" json:"attempts"`
	StartedAt       *time.Time     `json:"startedAt"`
	CompletedAt     *time.Time     `json:"completedAt"`
	DurationSeconds int            `gorm:"default:0" json:"durationSeconds"`
	ScreenshotPath  string         `gorm:"size:512" json:"screenshotPath"`
	Notes           string         `gorm:"type:text" json:"notes"`
}

func (TaskProgress) TableName() string {
	return "task_progress"
}

// ModuleProgress is derived from the module's task rows and rewritten in
// full after every task mutation. CertificateIssued is a one-way latch.
type ModuleProgress struct {
	BaseModel
	UserID               string         `gorm:"size:36;uniqueIndex:idx_module_progress;not null" json:"userId"`
	ModuleID             string         `gorm:"size:100;uniqueIndex:idx_module_progress;not null" json:"moduleId"`
	Status               ProgressStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	OverallScore         float64        `gorm:"default:0" json:"overallScore"`
	CompletionPercentage float64        `gorm:"default:0" json:"completionPercentage"`
	TotalTasks           int            `gorm:"default:0" json:"totalTasks"`
	CompletedTasks       int            `gorm:"default:0" json:"completedTasks"`
	StartedAt            *time.Time     `json:"startedAt"`
	CompletedAt          *time.Time     `json:"completedAt"`
	TotalDurationSeconds int            `gorm:"default:0" json:"totalDurationSeconds"`
	CertificateIssued    bool           `gorm:"default:false" json:"certificateIssued"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
