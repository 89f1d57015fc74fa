package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skilltrail-backend/internal/http/response"
	"github.com/yungbote/skilltrail-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/skilltrail-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrail-backend/internal/services"
)

type LearningPathHandler struct {
	learningPathService services.LearningPathService
}

func NewLearningPathHandler(learningPathService services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{learningPathService: learningPathService}
}

func (lh *LearningPathHandler) CreatePlan(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.CreatePlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", pkgerrors.ErrInvalidArgument)
		return
	}
	plan, err := lh.learningPathService.CreatePlan(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"learning_path": plan})
}

func (lh *LearningPathHandler) GetActivePlan(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	plan, err := lh.learningPathService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_path": plan})
}

func (lh *LearningPathHandler) DeactivatePlan(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	if err := lh.learningPathService.DeactivatePlan(c.Request.Context(), userID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "learning path deactivated"})
}

func (lh *LearningPathHandler) AssignProjects(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	skillID, err := uuid.Parse(c.Param("skillId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_skill_id", pkgerrors.ErrInvalidArgument)
		return
	}
	var req struct {
		Projects []services.ProjectInput `json:"projects"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", pkgerrors.ErrInvalidArgument)
		return
	}
	result, err := lh.learningPathService.AssignProjects(c.Request.Context(), userID, skillID, req.Projects)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"skill":            result.Skill,
		"overall_progress": result.OverallProgress,
	})
}

func (lh *LearningPathHandler) UpdateProjectStatus(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	skillID, err := uuid.Parse(c.Param("skillId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_skill_id", pkgerrors.ErrInvalidArgument)
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", pkgerrors.ErrInvalidArgument)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", pkgerrors.ErrInvalidArgument)
		return
	}
	result, err := lh.learningPathService.SetProjectStatus(c.Request.Context(), userID, skillID, projectID, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"project":          result.Project,
		"changed":          result.Changed,
		"skill_progress":   result.SkillProgress,
		"overall_progress": result.OverallProgress,
	})
}

func (lh *LearningPathHandler) FindSkillByName(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	skill, err := lh.learningPathService.FindSkillByName(c.Request.Context(), userID, c.Param("skillName"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill": skill})
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", pkgerrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return rd.UserID, true
}
