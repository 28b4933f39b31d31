package service

import (
	"fmt"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// milestoneRule pairs a milestone type with the counter it watches and the
// threshold that must be crossed.
type milestoneRule struct {
	Type        model.MilestoneType
	Threshold   int64
	Description string
	Count       func(s *MilestoneService, userID string) (int64, error)
}

var milestoneRules = []milestoneRule{
	{
		Type:        model.MilestoneFirstTask,
		Threshold:   1,
		Description: "Completed the first training task",
		Count: func(s *MilestoneService, userID string) (int64, error) {
			return s.ProgressRepo.CountCompletedTasks(userID)
		},
	},
	{
		Type:        model.MilestoneTenTasks,
		Threshold:   10,
		Description: "Completed 10 training tasks",
		Count: func(s *MilestoneService, userID string) (int64, error) {
			return s.ProgressRepo.CountCompletedTasks(userID)
		},
	},
	{
		Type:        model.MilestoneFirstModule,
		Threshold:   1,
		Description: "Completed the first training module",
		Count: func(s *MilestoneService, userID string) (int64, error) {
			return s.ProgressRepo.CountCompletedModules(userID)
		},
	},
	{
		Type:        model.MilestoneFiveModules,
		Threshold:   5,
		Description: "Completed 5 training modules",
		Count: func(s *MilestoneService, userID string) (int64, error) {
			return s.ProgressRepo.CountCompletedModules(userID)
		},
	},
	{
		Type:        model.MilestonePerfectScore,
		Threshold:   1,
		Description: "Scored 100 on a task",
		Count: func(s *MilestoneService, userID string) (int64, error) {
			return s.ProgressRepo.CountPerfectScores(userID)
		},
	},
}

// MilestoneService scans the user's aggregate counters after every
// completion and records each newly crossed threshold exactly once.
type MilestoneService struct {
	Repo         *repository.MilestoneRepository
	ProgressRepo *repository.ProgressRepository
	Log          *zap.Logger
}

func NewMilestoneService(repo *repository.MilestoneRepository, progressRepo *repository.ProgressRepository, log *zap.Logger) *MilestoneService {
	return &MilestoneService{Repo: repo, ProgressRepo: progressRepo, Log: log}
}

// Evaluate runs as a post-commit hook. Failures are logged and swallowed:
// a milestone that could not be recorded must never fail the completion
// that triggered it, and the insert-if-absent semantics make the next
// evaluation safe to retry.
func (s *MilestoneService) Evaluate(userID string) []model.Milestone {
	var awarded []model.Milestone

	for _, rule := range milestoneRules {
		count, err := rule.Count(s, userID)
		if err != nil {
			s.Log.Error("milestone counter failed",
				zap.String("user", userID), zap.String("type", string(rule.Type)), zap.Error(err))
			continue
		}
		if count < rule.Threshold {
			continue
		}

		m := model.Milestone{
			UserID:      userID,
			Type:        rule.Type,
			Value:       fmt.Sprintf("%d", count),
			Description: rule.Description,
		}
		inserted, err := s.Repo.InsertIfAbsent(&m)
		if err != nil {
			s.Log.Error("milestone insert failed",
				zap.String("user", userID), zap.String("type", string(rule.Type)), zap.Error(err))
			continue
		}
		if inserted {
			monitoring.MilestonesAwarded.Inc()
			s.Log.Info("milestone achieved",
				zap.String("user", userID), zap.String("type", string(rule.Type)))
			awarded = append(awarded, m)
		}
	}
	return awarded
}

func (s *MilestoneService) ForUser(userID string) ([]model.Milestone, error) {
	return s.Repo.FindByUser(userID)
}
