package controller

import (
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/service"
	"skilljumper_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary Get the skill profile
// @Description Returns the authenticated user's daily-living-skills profile
// @Tags profile
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.DLSProfile} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary Update the skill profile
// @Tags profile
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.DLSProfile true "Profile"
// @Success 200 {object} util.Response{data=model.DLSProfile} "Success"
// @Failure 400 {object} util.Response "Invalid profile"
// @Router /api/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var profile model.DLSProfile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.UpdateProfile(claims.UserID, &profile); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// swagger:model UpdateSkillLevelRequest
type UpdateSkillLevelRequest struct {
	Domain string `json:"domain" binding:"required"`
	Level  int    `json:"level" binding:"required,min=0,max=100"`
}

// UpdateSkillLevel godoc
// @Summary Update one skill domain level
// @Tags profile
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateSkillLevelRequest true "Domain and level"
// @Success 200 {object} util.Response "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/profile/skills [put]
func (c *UserController) UpdateSkillLevel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateSkillLevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.UpdateSkillLevel(claims.UserID, req.Domain, req.Level); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
