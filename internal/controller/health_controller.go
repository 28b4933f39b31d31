package controller

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techtrain_backend/internal/util"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

func (c *HealthController) Health(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	if err := sqlDB.Ping(); err != nil {
		util.InternalServerError(ctx)
		return
	}
	util.Success(ctx, gin.H{"status": "ok"})
}
