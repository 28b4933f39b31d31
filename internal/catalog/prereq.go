package catalog

// Resolver answers "which modules can this user start" from declared
// prerequisites and dependencies. Prerequisites gate on completion;
// dependencies gate on loadability.
type Resolver struct {
	loader *Loader
}

func NewResolver(loader *Loader) *Resolver {
	return &Resolver{loader: loader}
}

// AvailableModules returns every descriptor whose prerequisites are all in
// the completed set. An empty prerequisite list is trivially satisfied.
func (r *Resolver) AvailableModules(completed map[string]bool) []*ModuleDescriptor {
	var out []*ModuleDescriptor
	for _, d := range r.loader.Descriptors() {
		if prerequisitesMet(d, completed) {
			out = append(out, d)
		}
	}
	return out
}

// CanStart reports whether a single module may be started: its
// prerequisites must be completed and every declared dependency must be
// loadable. A module that reaches itself through its own prerequisite or
// dependency chain can never start; the walk carries a visited set rather
// than recursing unboundedly.
func (r *Resolver) CanStart(moduleID string, completed map[string]bool) bool {
	d, err := r.loader.Descriptor(moduleID)
	if err != nil {
		return false
	}
	if !prerequisitesMet(d, completed) {
		return false
	}
	for _, p := range d.Prerequisites {
		if p == moduleID {
			return false
		}
	}
	visited := map[string]bool{moduleID: true}
	return r.dependenciesLoadable(d, visited)
}

func (r *Resolver) dependenciesLoadable(d *ModuleDescriptor, visited map[string]bool) bool {
	for _, dep := range d.Dependencies {
		if visited[dep] {
			return false
		}
		visited[dep] = true
		if !r.loader.Loadable(dep) {
			return false
		}
		depDesc, err := r.loader.Descriptor(dep)
		if err != nil {
			return false
		}
		if !r.dependenciesLoadable(depDesc, visited) {
			return false
		}
	}
	return true
}

func prerequisitesMet(d *ModuleDescriptor, completed map[string]bool) bool {
	for _, p := range d.Prerequisites {
		if !completed[p] {
			return false
		}
	}
	return true
}
