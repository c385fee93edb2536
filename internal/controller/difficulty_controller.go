package controller

import (
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DifficultyController struct {
	DifficultyService *service.DifficultyService
}

func NewDifficultyController(difficultyService *service.DifficultyService) *DifficultyController {
	return &DifficultyController{DifficultyService: difficultyService}
}

func (c *DifficultyController) GetDifficulties(ctx *gin.Context) {
	var q dto.ListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	p := q.Pagination()

	difficulties, total, err := c.DifficultyService.List(ctx.Request.Context(), p)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, difficulties, total, p.Page, p.Limit)
}

func (c *DifficultyController) CreateDifficulty(ctx *gin.Context) {
	var req dto.CreateDifficultyRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	difficulty, err := c.DifficultyService.Create(ctx.Request.Context(), util.GetPrincipal(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, difficulty)
}

func (c *DifficultyController) UpdateDifficulty(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateDifficultyRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	difficulty, err := c.DifficultyService.Update(ctx.Request.Context(), util.GetPrincipal(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, difficulty)
}

func (c *DifficultyController) DeleteDifficulty(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.DifficultyService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *DifficultyController) StudentDifficulties(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(ctx, "studentId")
	if !ok {
		return
	}

	grades, err := c.DifficultyService.StudentDifficulties(ctx.Request.Context(), util.GetPrincipal(ctx), id, studentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}

// SetGrade records how much the student struggles with a topic.
func (c *DifficultyController) SetGrade(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(ctx, "studentId")
	if !ok {
		return
	}
	var req dto.GradeRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	grade, err := c.DifficultyService.SetGrade(ctx.Request.Context(), util.GetPrincipal(ctx), id, studentID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, grade)
}

func (c *DifficultyController) MyDifficulties(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	grades, err := c.DifficultyService.MyDifficulties(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}
