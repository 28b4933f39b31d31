package model

type MilestoneType string

const (
	MilestoneFirstTask    MilestoneType = "first_task"
	MilestoneTenTasks     MilestoneType = "10_tasks"
	MilestoneFirstModule  MilestoneType = "first_module"
	MilestoneFiveModules  MilestoneType = "5_modules"
	MilestonePerfectScore MilestoneType = "perfect_score"
)

// Milestone is a one-time achievement row, unique per (user, type).
// Once recorded it is never re-recorded or revoked.
type Milestone struct {
	BaseModel
	UserID      string        `gorm:"size:36;uniqueIndex:idx_milestone_user_type;not null" json:"userId"`
	Type        MilestoneType `gorm:"size:50;uniqueIndex:idx_milestone_user_type;not null" json:"type"`
	Value       string        `gorm:"size:100" json:"value"`
	Description string        `gorm:"type:text" json:"description"`
}

func (Milestone) TableName() string {
	return "progress_milestones"
}
