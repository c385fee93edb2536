package controller

import (
	"time"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController serves the admin user management endpoints.
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

func (c *UserController) GetUsers(ctx *gin.Context) {
	var q dto.UserListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f, err := q.Filter(time.Now())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	users, total, err := c.UserService.List(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, users, total, f.Page, f.Limit)
}

func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.Create(ctx.Request.Context(), util.GetPrincipal(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.Update(ctx.Request.Context(), util.GetPrincipal(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.UserService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *UserController) RestoreUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.Restore(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
