package controller

import (
	"errors"

	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/service"
	"techtrain_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// GetCatalog lists every known module with its availability state.
func (c *ModuleController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, c.ModuleService.Catalog())
}

// Discover re-scans the modules directory.
func (c *ModuleController) Discover(ctx *gin.Context) {
	util.Success(ctx, gin.H{"loadable": c.ModuleService.Discover()})
}

func (c *ModuleController) GetModule(ctx *gin.Context) {
	desc, err := c.ModuleService.Descriptor(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, desc)
}

// LoadModule instantiates the executable unit and returns its runtime
// view: objectives and task list.
func (c *ModuleController) LoadModule(ctx *gin.Context) {
	inst, err := c.ModuleService.Load(ctx.Param("id"))
	if err != nil {
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			util.Error(ctx, 422, loadErr.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"moduleId":   inst.ModuleID(),
		"objectives": inst.Objectives(),
		"tasks":      inst.Tasks(),
	})
}

// GetAvailable lists modules the authenticated user could start now.
func (c *ModuleController) GetAvailable(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	modules, err := c.ModuleService.Available(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// CanStart validates a requested start against prerequisites and
// dependencies without mutating anything.
func (c *ModuleController) CanStart(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	ok, err := c.ModuleService.CanStart(user.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"canStart": ok})
}
