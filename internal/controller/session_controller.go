package controller

import (
	"errors"
	"net/http"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/service"
	"techtrain_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

type openSessionRequest struct {
	ActivityType model.ActivityType `json:"activityType"`
}

func (c *SessionController) OpenSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req openSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.OpenSession(user.UserID, ctx.Param("id"), req.ActivityType)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotInCatalog):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSessionAlreadyOpen):
			util.Error(ctx, http.StatusConflict, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, session)
}

func (c *SessionController) CloseSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.SessionService.CloseSession(user.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if session == nil {
		// Tolerated: nothing was open.
		util.Success(ctx, gin.H{"closed": false})
		return
	}
	util.Success(ctx, session)
}

func (c *SessionController) GetSessions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessions, err := c.SessionService.SessionsForUser(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}
