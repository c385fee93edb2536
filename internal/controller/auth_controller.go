package controller

import (
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

func (c *AuthController) Profile(ctx *gin.Context) {
	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
