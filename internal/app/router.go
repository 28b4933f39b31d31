package app

import (
	"techtrain_backend/internal/config"
	"techtrain_backend/internal/middleware"
	"techtrain_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/health", c.health.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))

	modules := authed.Group("/modules")
	{
		modules.GET("", middleware.PermissionMiddleware(a.services.access, "module.read"), c.module.GetCatalog)
		modules.POST("/discover", middleware.PermissionMiddleware(a.services.access, "module.update"), c.module.Discover)
		modules.GET("/available", middleware.PermissionMiddleware(a.services.access, "module.read"), c.module.GetAvailable)
		modules.GET("/:id", middleware.PermissionMiddleware(a.services.access, "module.read"), c.module.GetModule)
		modules.POST("/:id/load", middleware.PermissionMiddleware(a.services.access, "module.read"), c.module.LoadModule)
		modules.GET("/:id/can-start", middleware.PermissionMiddleware(a.services.access, "module.read"), c.module.CanStart)
	}

	progress := authed.Group("/progress")
	progress.Use(middleware.PermissionMiddleware(a.services.access, "training.participate"))
	{
		progress.POST("/modules/:id/tasks/:taskId/start", c.progress.StartTask)
		progress.POST("/modules/:id/tasks/:taskId/complete", c.progress.CompleteTask)
		progress.GET("/modules/:id", c.progress.GetModuleProgress)
		progress.GET("/me", c.progress.GetUserProgress)
	}

	sessions := authed.Group("/sessions")
	sessions.Use(middleware.PermissionMiddleware(a.services.access, "training.participate"))
	{
		sessions.POST("/modules/:id/open", c.session.OpenSession)
		sessions.POST("/modules/:id/close", c.session.CloseSession)
		sessions.GET("", c.session.GetSessions)
	}

	roles := authed.Group("/roles")
	{
		roles.GET("", middleware.PermissionMiddleware(a.services.access, "user.read"), c.role.GetRoles)
		roles.POST("", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.CreateRole)
		roles.PUT("/:id", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.UpdateRole)
		roles.DELETE("/:id", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.DeleteRole)
		roles.POST("/assign", middleware.PermissionMiddleware(a.services.access, "user.update"), c.role.AssignRole)
		roles.POST("/permissions/grant", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.GrantPermission)
		roles.POST("/permissions/revoke", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.RevokePermission)
		roles.GET("/audit", middleware.PermissionMiddleware(a.services.access, "system.config"), c.role.GetAuditLog)
	}

	authed.GET("/permissions", c.role.GetPermissions)
}
