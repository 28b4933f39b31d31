package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"techtrain_backend/internal/service"
	"techtrain_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoleController struct {
	AccessService *service.AccessService
}

func NewRoleController(accessService *service.AccessService) *RoleController {
	return &RoleController{AccessService: accessService}
}

func (c *RoleController) GetRoles(ctx *gin.Context) {
	roles, err := c.AccessService.Roles()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, roles)
}

func (c *RoleController) CreateRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	role, err := c.AccessService.CreateRole(req, user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrRoleExists) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, role)
}

func (c *RoleController) UpdateRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	role, err := c.AccessService.UpdateRole(ctx.Param("id"), req, user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrRoleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, role)
}

func (c *RoleController) DeleteRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.AccessService.DeleteRole(ctx.Param("id"), user.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRoleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrBuiltInRole), errors.Is(err, util.ErrRoleInUse):
			util.Error(ctx, http.StatusConflict, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

type assignRoleRequest struct {
	UserID string `json:"userId" binding:"required"`
	RoleID string `json:"roleId" binding:"required"`
}

func (c *RoleController) AssignRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req assignRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AccessService.AssignRole(req.UserID, req.RoleID, user.UserID); err != nil {
		switch {
		case errors.Is(err, util.ErrRoleNotFound), errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"assigned": true})
}

type overrideRequest struct {
	UserID     string     `json:"userId" binding:"required"`
	Permission string     `json:"permission" binding:"required"`
	Reason     string     `json:"reason"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (c *RoleController) GrantPermission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req overrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AccessService.GrantPermission(req.UserID, req.Permission, user.UserID, req.Reason, req.ExpiresAt); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"granted": true})
}

func (c *RoleController) RevokePermission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req overrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AccessService.RevokePermission(req.UserID, req.Permission, user.UserID, req.Reason); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"revoked": true})
}

// GetPermissions returns the authenticated user's effective permission
// set; ?check=module.create answers a single permission query instead.
func (c *RoleController) GetPermissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if perm := ctx.Query("check"); perm != "" {
		ok, err := c.AccessService.Has(user.UserID, perm)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, gin.H{"permission": perm, "allowed": ok})
		return
	}

	perms, err := c.AccessService.PermissionList(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, perms)
}

func (c *RoleController) GetAuditLog(ctx *gin.Context) {
	limit := 100
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	entries, err := c.AccessService.AuditLog(ctx.Query("userId"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
