package controller

import (
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReinforcementController struct {
	ReinforcementService *service.ReinforcementService
}

func NewReinforcementController(reinforcementService *service.ReinforcementService) *ReinforcementController {
	return &ReinforcementController{ReinforcementService: reinforcementService}
}

func (c *ReinforcementController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	question, err := c.ReinforcementService.CreateQuestion(ctx.Request.Context(), util.GetPrincipal(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

func (c *ReinforcementController) GetQuestions(ctx *gin.Context) {
	var q dto.QuestionListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f := q.Filter()

	questions, total, err := c.ReinforcementService.ListQuestions(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, questions, total, f.Page, f.Limit)
}

func (c *ReinforcementController) CreateSession(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateSessionRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	session, err := c.ReinforcementService.CreateSession(ctx.Request.Context(), util.GetPrincipal(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

func (c *ReinforcementController) GetSessions(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.ListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	p := q.Pagination()

	sessions, total, err := c.ReinforcementService.ListSessions(ctx.Request.Context(), util.GetPrincipal(ctx), id, p)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, sessions, total, p.Page, p.Limit)
}

// GetSession returns the session with its questions. Answers are never
// included.
func (c *ReinforcementController) GetSession(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.ReinforcementService.GetSession(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

func (c *ReinforcementController) DeleteSession(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ReinforcementService.DeleteSession(ctx.Request.Context(), util.GetPrincipal(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
