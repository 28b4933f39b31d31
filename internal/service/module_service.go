package service

import (
	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/util"
	"techtrain_backend/pkg/monitoring"
)

// ModuleService is the catalog surface: discovery, descriptor listing with
// availability state, and executable-unit loading.
type ModuleService struct {
	Loader        *catalog.Loader
	Prerequisites *PrerequisiteService
}

func NewModuleService(loader *catalog.Loader, prerequisites *PrerequisiteService) *ModuleService {
	return &ModuleService{Loader: loader, Prerequisites: prerequisites}
}

// CatalogEntry is a descriptor annotated with its runtime state, so the
// shell can show unavailable modules instead of hiding them.
type CatalogEntry struct {
	Descriptor *catalog.ModuleDescriptor `json:"descriptor"`
	Loadable   bool                      `json:"loadable"`
	LoadError  string                    `json:"loadError,omitempty"`
}

// Discover re-scans the modules directory and returns the loadable ids.
func (s *ModuleService) Discover() []string {
	return s.Loader.Discover()
}

// Catalog lists every known descriptor with its load state.
func (s *ModuleService) Catalog() []CatalogEntry {
	descriptors := s.Loader.Descriptors()
	entries := make([]CatalogEntry, 0, len(descriptors))
	for _, d := range descriptors {
		entry := CatalogEntry{
			Descriptor: d,
			Loadable:   s.Loader.Loadable(d.ID),
		}
		if err := s.Loader.LoadFailure(d.ID); err != nil {
			entry.LoadError = err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *ModuleService) Descriptor(moduleID string) (*catalog.ModuleDescriptor, error) {
	d, err := s.Loader.Descriptor(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotInCatalog
	}
	return d, nil
}

// Load instantiates the executable unit behind a descriptor, going through
// the loader's cache.
func (s *ModuleService) Load(moduleID string) (catalog.ExecutableModule, error) {
	inst, err := s.Loader.Load(moduleID)
	if err != nil {
		return nil, err
	}
	monitoring.ModulesLoaded.Inc()
	return inst, nil
}

// Available lists the modules the user could start now.
func (s *ModuleService) Available(userID string) ([]*catalog.ModuleDescriptor, error) {
	return s.Prerequisites.AvailableModules(userID)
}

// CanStart validates a requested start for one module.
func (s *ModuleService) CanStart(userID, moduleID string) (bool, error) {
	return s.Prerequisites.CanStart(userID, moduleID)
}
