package controller

import (
	"context"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MissionController struct {
	MissionService *service.MissionService
}

func NewMissionController(missionService *service.MissionService) *MissionController {
	return &MissionController{MissionService: missionService}
}

func (c *MissionController) GetMissions(ctx *gin.Context) {
	var q dto.MissionListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f := q.Filter()

	missions, total, err := c.MissionService.List(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, missions, total, f.Page, f.Limit)
}

func (c *MissionController) GetMission(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	mission, err := c.MissionService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, mission)
}

func (c *MissionController) CreateMission(ctx *gin.Context) {
	var req dto.CreateMissionRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	mission, err := c.MissionService.Create(ctx.Request.Context(), util.GetPrincipal(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, mission)
}

func (c *MissionController) UpdateMission(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateMissionRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	mission, err := c.MissionService.Update(ctx.Request.Context(), util.GetPrincipal(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, mission)
}

func (c *MissionController) DeleteMission(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.MissionService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *MissionController) CompleteMission(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	missionID, ok := idParam(ctx, "missionId")
	if !ok {
		return
	}
	var req dto.CompleteMissionRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	completion, err := c.MissionService.Complete(ctx.Request.Context(), util.GetPrincipal(ctx), id, missionID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

type completionLoader func(context.Context, model.Principal, repository.CompletionFilter) ([]dto.CompletionView, int64, error)

func (c *MissionController) pageCompletions(ctx *gin.Context, load completionLoader) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.CompletionListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f, err := q.Filter(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	completions, total, err := load(ctx.Request.Context(), util.GetPrincipal(ctx), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, completions, total, f.Page, f.Limit)
}

func (c *MissionController) MyCompletions(ctx *gin.Context) {
	c.pageCompletions(ctx, c.MissionService.MyCompletions)
}

// Progress lists the completions of every student of the course.
func (c *MissionController) Progress(ctx *gin.Context) {
	c.pageCompletions(ctx, c.MissionService.Progress)
}
