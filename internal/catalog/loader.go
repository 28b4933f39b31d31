package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const manifestFileName = "manifest.json"

// Loader discovers module manifests, resolves the executable unit behind
// each descriptor through the registry, and caches loaded instances. All
// failures are per-module; one bad manifest or constructor never aborts
// discovery or loading of the others.
type Loader struct {
	registry   *Registry
	modulesDir string
	log        *zap.Logger

	mu          sync.RWMutex
	descriptors map[string]*ModuleDescriptor
	loaded      map[string]ExecutableModule
	failures    map[string]error
}

func NewLoader(registry *Registry, modulesDir string, log *zap.Logger) *Loader {
	return &Loader{
		registry:    registry,
		modulesDir:  modulesDir,
		log:         log,
		descriptors: make(map[string]*ModuleDescriptor),
		loaded:      make(map[string]ExecutableModule),
		failures:    make(map[string]error),
	}
}

// RegisterManifest parses manifest bytes obtained from any source
// (embedded resource, network, test fixture) and adds the descriptor to
// the catalog. The loader does not care how the bytes were obtained.
func (l *Loader) RegisterManifest(manifest []byte) (*ModuleDescriptor, error) {
	d, err := ParseDescriptor(manifest)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.descriptors[d.ID] = d
	l.mu.Unlock()
	return d, nil
}

// Discover walks the modules directory for manifests, merges them into the
// descriptor set, and returns the ids of modules that have both a valid
// manifest and a resolvable executable unit. Directories with a leading
// underscore are skipped; parse failures are logged and isolated.
func (l *Loader) Discover() []string {
	entries, err := os.ReadDir(l.modulesDir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn("modules directory unreadable",
				zap.String("dir", l.modulesDir), zap.Error(err))
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		path := filepath.Join(l.modulesDir, entry.Name(), manifestFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, err := l.RegisterManifest(data); err != nil {
			l.log.Error("skipping module with bad manifest",
				zap.String("path", path), zap.Error(err))
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var loadable []string
	for id := range l.descriptors {
		if l.registry.HasUnit(id) {
			loadable = append(loadable, id)
		}
	}
	sort.Strings(loadable)
	return loadable
}

// Descriptor returns the parsed descriptor for a module id. Unloadable
// modules remain visible here so the caller can show "unavailable" rather
// than hide the entry.
func (l *Loader) Descriptor(moduleID string) (*ModuleDescriptor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.descriptors[moduleID]
	if !ok {
		return nil, ErrModuleNotFound
	}
	return d, nil
}

// Descriptors returns every known descriptor sorted by id.
func (l *Loader) Descriptors() []*ModuleDescriptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*ModuleDescriptor, 0, len(l.descriptors))
	for _, d := range l.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Loadable reports whether the module could be instantiated: either it is
// already cached or its unit has at least one registered constructor.
func (l *Loader) Loadable(moduleID string) bool {
	l.mu.RLock()
	if _, ok := l.loaded[moduleID]; ok {
		l.mu.RUnlock()
		return true
	}
	_, known := l.descriptors[moduleID]
	l.mu.RUnlock()
	return known && l.registry.HasUnit(moduleID)
}

// LoadFailure returns the recorded load error for a module, or nil.
func (l *Loader) LoadFailure(moduleID string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.failures[moduleID]
}

// Load resolves and instantiates the executable unit behind a descriptor.
// Resolution is two-stage: the conventional constructor name from
// UnitClassName first, then a scan of the unit's registered symbols for
// the first value satisfying ExecutableModule. Instances are cached per
// id; repeated calls return the cached instance.
func (l *Loader) Load(moduleID string) (ExecutableModule, error) {
	l.mu.RLock()
	if inst, ok := l.loaded[moduleID]; ok {
		l.mu.RUnlock()
		return inst, nil
	}
	_, known := l.descriptors[moduleID]
	l.mu.RUnlock()

	if !known {
		return nil, &LoadError{ModuleID: moduleID, Cause: ErrModuleNotFound}
	}

	inst, err := l.resolve(moduleID)
	if err != nil {
		l.mu.Lock()
		l.failures[moduleID] = err
		l.mu.Unlock()
		l.log.Error("module load failed", zap.String("module", moduleID), zap.Error(err))
		return nil, err
	}

	// Insert-then-return: a racing Load for the same id keeps the first
	// cached instance.
	l.mu.Lock()
	if prior, ok := l.loaded[moduleID]; ok {
		inst = prior
	} else {
		l.loaded[moduleID] = inst
		delete(l.failures, moduleID)
	}
	l.mu.Unlock()

	l.log.Info("module loaded", zap.String("module", moduleID))
	return inst, nil
}

func (l *Loader) resolve(moduleID string) (ExecutableModule, error) {
	symbols := l.registry.Symbols(moduleID)
	if len(symbols) == 0 {
		return nil, &LoadError{ModuleID: moduleID, Cause: ErrClassNotFound}
	}

	var constructionErr error

	expected := UnitClassName(moduleID)
	if f, ok := symbols[expected]; ok {
		inst, err := construct(f)
		if err == nil {
			return inst, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			constructionErr = err
		}
	}

	// Fallback: scan the unit's remaining exported symbols for any value
	// satisfying the contract, in deterministic order.
	for _, name := range l.registry.SymbolNames(moduleID) {
		if name == expected {
			continue
		}
		inst, err := construct(symbols[name])
		if err != nil {
			if constructionErr == nil && !errors.Is(err, ErrClassNotFound) {
				constructionErr = err
			}
			continue
		}
		return inst, nil
	}

	if constructionErr != nil {
		return nil, &LoadError{ModuleID: moduleID, Cause: constructionErr}
	}
	return nil, &LoadError{ModuleID: moduleID, Cause: ErrClassNotFound}
}

// construct invokes a factory, converting panics into construction errors
// and rejecting values that do not satisfy the module contract.
func construct(f Factory) (inst ExecutableModule, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			err = fmt.Errorf("construction failed: %v", r)
		}
	}()

	v, err := f()
	if err != nil {
		return nil, fmt.Errorf("construction failed: %w", err)
	}
	m, ok := v.(ExecutableModule)
	if !ok {
		return nil, ErrClassNotFound
	}
	return m, nil
}
