package catalog

import (
	"sort"
	"strings"
	"sync"
)

// ExecutableModule is the behavior contract behind a ModuleDescriptor. The
// two are distinct types joined only by a shared id; executable units never
// hold UI state.
type ExecutableModule interface {
	ModuleID() string
	Objectives() []string
	Tasks() []TaskDescriptor
	// ValidateTask checks caller-supplied evidence for one task before it
	// is recorded as complete.
	ValidateTask(taskID string, evidence map[string]string) error
}

// Factory constructs one exported value of a unit. The result is only
// usable as a module when it satisfies ExecutableModule; the loader checks
// conformance at resolution time.
type Factory func() (interface{}, error)

// Registry indexes the named constructors each unit exports, keyed by
// module id. An instance is passed into the Loader at construction; there
// is no package-level registry mutated at import time.
type Registry struct {
	mu    sync.RWMutex
	units map[string]map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{units: make(map[string]map[string]Factory)}
}

// Register adds one named constructor to a unit, creating the unit on
// first use. Re-registering a symbol replaces it.
func (r *Registry) Register(moduleID, symbol string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.units[moduleID] == nil {
		r.units[moduleID] = make(map[string]Factory)
	}
	r.units[moduleID][symbol] = f
}

// RegisterUnit adds all of a unit's exported constructors at once.
func (r *Registry) RegisterUnit(moduleID string, symbols map[string]Factory) {
	for name, f := range symbols {
		r.Register(moduleID, name, f)
	}
}

// Symbols returns a copy of the unit's constructor table, or nil when the
// unit is unknown.
func (r *Registry) Symbols(moduleID string) map[string]Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.units[moduleID]
	if !ok {
		return nil
	}
	out := make(map[string]Factory, len(unit))
	for name, f := range unit {
		out[name] = f
	}
	return out
}

// SymbolNames returns the unit's constructor names in sorted order, so the
// fallback scan is deterministic.
func (r *Registry) SymbolNames(moduleID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit := r.units[moduleID]
	names := make([]string, 0, len(unit))
	for name := range unit {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasUnit reports whether any constructor is registered for the module.
func (r *Registry) HasUnit(moduleID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units[moduleID]) > 0
}

// UnitClassName is the fixed naming transform from a module id to its
// conventional constructor name: tokens joined, PascalCase, "Module"
// suffix. "network_file_sharing" becomes "NetworkFileSharingModule".
func UnitClassName(moduleID string) string {
	tokens := strings.FieldsFunc(moduleID, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(strings.ToUpper(tok[:1]))
		b.WriteString(strings.ToLower(tok[1:]))
	}
	b.WriteString("Module")
	return b.String()
}
