package controller

import (
	"skillverify_backend/internal/repository"
	"skillverify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Repo *repository.TemplateRepository
}

func NewHealthController(repo *repository.TemplateRepository) *HealthController {
	return &HealthController{Repo: repo}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"templates": gin.H{
				"skills": c.Repo.Skills(),
			},
		},
	})
}
