package controller

import (
	"skillverify_backend/internal/model"
	"skillverify_backend/internal/repository"
	"skillverify_backend/internal/service"
	"skillverify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VerificationController struct {
	Service *service.VerificationService
}

func NewVerificationController(svc *service.VerificationService) *VerificationController {
	return &VerificationController{Service: svc}
}

// @Summary 生成技能测评
// @Tags 技能认证
// @Accept json
// @Produce json
// @Param body body model.AssessmentRequest true "测评参数"
// @Success 200 {object} util.Response
// @Router /api/verification/generate-assessment [post]
func (c *VerificationController) GenerateAssessment(ctx *gin.Context) {
	var req model.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Service.GenerateAssessment(req))
}

// @Summary 提交测评答案并判分
// @Tags 技能认证
// @Accept json
// @Produce json
// @Param body body model.AssessmentSubmission true "答案提交"
// @Success 200 {object} util.Response
// @Router /api/verification/submit-assessment [post]
func (c *VerificationController) SubmitAssessment(ctx *gin.Context) {
	var submission model.AssessmentSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 无持久化：按提交携带的原始参数重建试卷作为判分答案卷。
	// 参数缺失时退回默认技能/中级难度
	req := model.AssessmentRequest{
		UserID:       submission.UserID,
		Skill:        submission.Skill,
		Difficulty:   submission.Difficulty,
		NumQuestions: submission.NumQuestions,
	}
	if req.Skill == "" {
		req.Skill = repository.DefaultSkill
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = len(submission.Answers)
	}

	assessment := c.Service.RegenerateAssessment(req, submission.AssessmentID)
	util.Success(ctx, c.Service.EvaluateAssessment(submission, assessment))
}

// @Summary 生成完整模拟测试
// @Tags 技能认证
// @Accept json
// @Produce json
// @Param body body model.MockTestRequest true "模拟测试参数"
// @Success 200 {object} util.Response
// @Router /api/verification/mock-test/generate [post]
func (c *VerificationController) GenerateMockTest(ctx *gin.Context) {
	var req model.MockTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Service.GenerateMockTest(req))
}

// @Summary 提交模拟测试答案并判分
// @Tags 技能认证
// @Accept json
// @Produce json
// @Param body body model.AssessmentSubmission true "答案提交"
// @Success 200 {object} util.Response
// @Router /api/verification/mock-test/submit [post]
func (c *VerificationController) SubmitMockTest(ctx *gin.Context) {
	var submission model.AssessmentSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	req := model.MockTestRequest{
		UserID:       submission.UserID,
		PrimarySkill: submission.Skill,
	}
	if req.PrimarySkill == "" {
		req.PrimarySkill = repository.DefaultSkill
	}

	assessment := c.Service.RegenerateMockTest(req, submission.AssessmentID)
	util.Success(ctx, c.Service.EvaluateAssessment(submission, assessment))
}

// @Summary 技能认证服务健康检查
// @Tags 技能认证
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/verification/health [get]
func (c *VerificationController) Health(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status":  "healthy",
		"service": "Skill Verification",
		"features": []string{
			"AI-Generated Assessments",
			"Multiple Question Types",
			"Confidence Scoring",
			"Detailed Feedback",
		},
	})
}
