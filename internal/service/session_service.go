package service

import (
	"errors"
	"time"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionService brackets module-engagement periods. Closed session time
// is folded into the module aggregate through a progress recompute.
type SessionService struct {
	Repo     *repository.SessionRepository
	Progress *ProgressService
	Log      *zap.Logger

	now func() time.Time
}

func NewSessionService(repo *repository.SessionRepository, progress *ProgressService, log *zap.Logger) *SessionService {
	return &SessionService{Repo: repo, Progress: progress, Log: log, now: time.Now}
}

// OpenSession starts a new engagement bracket. A second open for the same
// (user, module) pair is a caller error; the existing session must be
// closed first.
func (s *SessionService) OpenSession(userID, moduleID string, activity model.ActivityType) (*model.TrainingSession, error) {
	if _, err := s.Progress.Loader.Descriptor(moduleID); err != nil {
		return nil, util.ErrModuleNotInCatalog
	}

	_, err := s.Repo.FindOpen(userID, moduleID)
	if err == nil {
		return nil, util.ErrSessionAlreadyOpen
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if activity == "" {
		activity = model.ActivityTraining
	}
	session := &model.TrainingSession{
		UserID:       userID,
		ModuleID:     moduleID,
		StartTime:    s.now(),
		ActivityType: activity,
	}
	if err := s.Repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// CloseSession stamps the open session's end time and folds its duration
// into the module progress. Closing with nothing open is tolerated as a
// no-op so crash-recovery paths that lost the open bracket don't error.
func (s *SessionService) CloseSession(userID, moduleID string) (*model.TrainingSession, error) {
	session, err := s.Repo.FindOpen(userID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.Log.Warn("close without open session",
			zap.String("user", userID), zap.String("module", moduleID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	duration := int(now.Sub(session.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}
	session.EndTime = &now
	session.DurationSeconds = duration
	if err := s.Repo.Update(session); err != nil {
		return nil, err
	}

	if _, err := s.Progress.RefreshModule(userID, moduleID); err != nil {
		s.Log.Error("progress refresh after session close failed",
			zap.String("user", userID), zap.String("module", moduleID), zap.Error(err))
	}
	return session, nil
}

func (s *SessionService) SessionsForUser(userID string) ([]model.TrainingSession, error) {
	return s.Repo.FindByUser(userID)
}
