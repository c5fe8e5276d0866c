package controller

import (
	"github.com/gin-gonic/gin"

	"codearena/internal/judge/model"
	"codearena/internal/judge/service"
	"codearena/pkg/utils/response"
)

// SubmissionController exposes read access to judged submissions.
type SubmissionController struct {
	judgeService *service.JudgeService
}

// NewSubmissionController creates a new SubmissionController.
func NewSubmissionController(judgeService *service.JudgeService) *SubmissionController {
	return &SubmissionController{judgeService: judgeService}
}

// RegisterRoutes mounts the submission endpoints.
func (h *SubmissionController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/v1/submissions/:id", h.GetSubmission)
}

// GetSubmission returns a submission and its per-test results.
func (h *SubmissionController) GetSubmission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "submission id is required")
		return
	}

	sub, results, err := h.judgeService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, SubmissionResponse{
		Submission: sub,
		Results:    results,
	})
}

// SubmissionResponse is the GET submission payload.
type SubmissionResponse struct {
	Submission *model.Submission      `json:"submission"`
	Results    []model.TestCaseResult `json:"results"`
}
