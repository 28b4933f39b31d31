package controller

import (
	"errors"
	"net/http"

	"techtrain_backend/internal/service"
	"techtrain_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type completeTaskRequest struct {
	Score          *float64 `json:"score"`
	ScreenshotPath string   `json:"screenshotPath"`
	Notes          string   `json:"notes"`
}

func (c *ProgressController) StartTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	row, err := c.ProgressService.StartTask(user.UserID, ctx.Param("id"), ctx.Param("taskId"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotInCatalog), errors.Is(err, util.ErrTaskNotInModule):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPrerequisitesNotMet):
			util.Error(ctx, http.StatusConflict, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, row)
}

func (c *ProgressController) CompleteTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req completeTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.ProgressService.CompleteTask(user.UserID, ctx.Param("id"), ctx.Param("taskId"), service.CompleteTaskInput{
		Score:          req.Score,
		ScreenshotPath: req.ScreenshotPath,
		Notes:          req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotInCatalog), errors.Is(err, util.ErrTaskNotInModule):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrEvidenceRejected):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, row)
}

// GetModuleProgress returns the stored aggregate for one module.
func (c *ProgressController) GetModuleProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.ModuleProgress(user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrModuleNotInCatalog) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetUserProgress returns the complete progress report for the
// authenticated user.
func (c *ProgressController) GetUserProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.ProgressService.UserProgress(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
