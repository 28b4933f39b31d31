// Package modules holds the first-party training units shipped with the
// application. Each unit registers its constructors and embedded manifest
// through Register; nothing in this package mutates global state at import
// time.
package modules

import (
	"fmt"

	"techtrain_backend/internal/catalog"
)

// unit is the shared implementation backing every built-in training
// module. Behavior-only: descriptors stay immutable and no UI state is
// carried here.
type unit struct {
	desc *catalog.ModuleDescriptor
}

func (u *unit) ModuleID() string { return u.desc.ID }

func (u *unit) Objectives() []string { return u.desc.Objectives }

func (u *unit) Tasks() []catalog.TaskDescriptor { return u.desc.Tasks }

func (u *unit) ValidateTask(taskID string, evidence map[string]string) error {
	task := u.desc.Task(taskID)
	if task == nil {
		return fmt.Errorf("unknown task %q in module %s", taskID, u.desc.ID)
	}
	if task.ScreenshotRequired && evidence["screenshot"] == "" {
		return fmt.Errorf("task %s requires a screenshot", taskID)
	}
	return nil
}
