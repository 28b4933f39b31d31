package service

import (
	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/repository"
)

// PrerequisiteService joins the catalog's prerequisite resolver with the
// user's recorded completions.
type PrerequisiteService struct {
	Resolver     *catalog.Resolver
	ProgressRepo *repository.ProgressRepository
}

func NewPrerequisiteService(resolver *catalog.Resolver, progressRepo *repository.ProgressRepository) *PrerequisiteService {
	return &PrerequisiteService{Resolver: resolver, ProgressRepo: progressRepo}
}

// AvailableModules returns every descriptor the user could start now.
func (s *PrerequisiteService) AvailableModules(userID string) ([]*catalog.ModuleDescriptor, error) {
	completed, err := s.ProgressRepo.CompletedModuleIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.Resolver.AvailableModules(completed), nil
}

// CanStart validates one requested start against prerequisites and
// dependencies.
func (s *PrerequisiteService) CanStart(userID, moduleID string) (bool, error) {
	completed, err := s.ProgressRepo.CompletedModuleIDs(userID)
	if err != nil {
		return false, err
	}
	return s.Resolver.CanStart(moduleID, completed), nil
}
