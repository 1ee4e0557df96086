package controller

import (
	"errors"

	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/service"
	"skilljumper_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestController struct {
	QuestService    *service.QuestService
	FeedbackService *service.FeedbackService
	CatalogService  *service.CatalogService
	UserService     *service.UserService
}

func NewQuestController(
	questService *service.QuestService,
	feedbackService *service.FeedbackService,
	catalogService *service.CatalogService,
	userService *service.UserService,
) *QuestController {
	return &QuestController{
		QuestService:    questService,
		FeedbackService: feedbackService,
		CatalogService:  catalogService,
		UserService:     userService,
	}
}

// SelectQuestRequest is one selection call. The skill profile and learning
// model are loaded server-side from the authenticated user.
// swagger:model SelectQuestRequest
type SelectQuestRequest struct {
	UserIntent   string             `json:"userIntent" binding:"required"`
	UrgencyLevel model.UrgencyLevel `json:"urgencyLevel"`

	CurrentContext       model.UserContext          `json:"currentContext"`
	EnvironmentalFactors model.EnvironmentalFactors `json:"environmentalFactors"`
	TimeConstraints      model.TimeConstraints      `json:"timeConstraints" binding:"required"`

	SessionContext model.SessionContext `json:"sessionContext"`
	Preferences    model.Preferences    `json:"preferences"`
}

// SelectQuest godoc
// @Summary Select the optimal quest
// @Description Runs the selection pipeline for the authenticated user and returns a personalized recommendation
// @Tags quests
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SelectQuestRequest true "Selection context"
// @Success 200 {object} util.Response{data=model.Recommendation} "Success"
// @Failure 400 {object} util.Response "Invalid criteria"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 500 {object} util.Response "Selection failed"
// @Router /api/quests/select [post]
func (c *QuestController) SelectQuest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SelectQuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	criteria := &model.SelectionCriteria{
		UserIntent:           req.UserIntent,
		UrgencyLevel:         req.UrgencyLevel,
		Profile:              *profile,
		CurrentContext:       req.CurrentContext,
		EnvironmentalFactors: req.EnvironmentalFactors,
		TimeConstraints:      req.TimeConstraints,
		SessionContext:       req.SessionContext,
		Preferences:          req.Preferences,
	}

	rec, err := c.QuestService.SelectOptimalQuest(ctx.Request.Context(), criteria)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCriteria) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}

// SubmitFeedback godoc
// @Summary Submit quest feedback
// @Description Records a quest attempt and updates the user's learning model
// @Tags quests
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.FeedbackInput true "Attempt feedback"
// @Success 200 {object} util.Response{data=model.QuestAttempt} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Quest not found"
// @Failure 409 {object} util.Response "Attempt already processed"
// @Router /api/quests/feedback [post]
func (c *QuestController) SubmitFeedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.FeedbackInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	input.UserID = claims.UserID

	attempt, err := c.FeedbackService.ProcessFeedback(ctx.Request.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateAttempt):
			util.Error(ctx, 409, "attempt already processed")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if attempt.Succeeded() {
		if quest, err := c.CatalogService.GetQuest(ctx.Request.Context(), attempt.QuestID); err == nil {
			c.UserService.AwardXP(claims.UserID, quest.Rewards.XP)
		}
	}

	util.Success(ctx, attempt)
}

// GetAttempts godoc
// @Summary List own quest attempts
// @Tags quests
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "Max attempts" default(20)
// @Success 200 {object} util.Response{data=[]model.QuestAttempt} "Success"
// @Router /api/attempts [get]
func (c *QuestController) GetAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	limit := util.ParsePositiveInt(ctx.DefaultQuery("limit", "20"), 20)

	attempts, err := c.FeedbackService.AttemptHistory(ctx.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetLearningModel godoc
// @Summary Get own learning model
// @Description Returns the learned preferences and performance patterns driving quest selection
// @Tags quests
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.LearningModel} "Success"
// @Router /api/learning-model [get]
func (c *QuestController) GetLearningModel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lm, err := c.FeedbackService.LearningModel(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, lm)
}

// GetQuest godoc
// @Summary Get one quest
// @Tags quests
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Quest ID"
// @Success 200 {object} util.Response{data=model.Quest} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/quests/{id} [get]
func (c *QuestController) GetQuest(ctx *gin.Context) {
	quest, err := c.CatalogService.GetQuest(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, quest)
}

// ListQuests godoc
// @Summary List catalog quests
// @Tags quests
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/quests [get]
func (c *QuestController) ListQuests(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.DefaultQuery("page", "1"), 1)
	limit := util.ParsePositiveInt(ctx.DefaultQuery("limit", "20"), 20)

	quests, total, err := c.CatalogService.ListQuests(ctx.Request.Context(), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quests, Total: total, Page: page, Limit: limit})
}

// CreateQuest godoc
// @Summary Create a catalog quest
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.Quest true "Quest"
// @Success 201 {object} util.Response{data=model.Quest} "Created"
// @Failure 400 {object} util.Response "Invalid quest"
// @Router /api/admin/quests [post]
func (c *QuestController) CreateQuest(ctx *gin.Context) {
	var quest model.Quest
	if err := ctx.ShouldBindJSON(&quest); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.CreateQuest(ctx.Request.Context(), &quest); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, quest)
}

// UpdateQuest godoc
// @Summary Update a catalog quest
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Quest ID"
// @Param   body body model.Quest true "Quest"
// @Success 200 {object} util.Response{data=model.Quest} "Success"
// @Failure 400 {object} util.Response "Invalid quest"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quests/{id} [put]
func (c *QuestController) UpdateQuest(ctx *gin.Context) {
	var quest model.Quest
	if err := ctx.ShouldBindJSON(&quest); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quest.ID = ctx.Param("id")

	if err := c.CatalogService.UpdateQuest(ctx.Request.Context(), &quest); err != nil {
		if errors.Is(err, util.ErrQuestNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, quest)
}

// UploadMaterial godoc
// @Summary Upload quest supporting material
// @Description Attaches an uploaded file (diagram, audio, demo video) to a quest
// @Tags admin
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Quest ID"
// @Param   file formData file true "Material file"
// @Param   type formData string true "Material type" Enums(visual, audio, video, text, interactive)
// @Success 200 {object} util.Response{data=model.Quest} "Success"
// @Failure 400 {object} util.Response "Invalid upload"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quests/{id}/materials [post]
func (c *QuestController) UploadMaterial(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	materialType := model.MaterialType(ctx.PostForm("type"))
	switch materialType {
	case model.MaterialVisual, model.MaterialAudio, model.MaterialVideo, model.MaterialText, model.MaterialInteractive:
	default:
		util.BadRequest(ctx, "invalid material type")
		return
	}

	quest, err := c.CatalogService.UploadMaterial(ctx.Request.Context(), ctx.Param("id"), header, materialType)
	if err != nil {
		if errors.Is(err, util.ErrQuestNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, quest)
}
