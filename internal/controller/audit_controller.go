package controller

import (
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuditController struct {
	AuditService *service.AuditService
}

func NewAuditController(auditService *service.AuditService) *AuditController {
	return &AuditController{AuditService: auditService}
}

func (c *AuditController) GetAuditLogs(ctx *gin.Context) {
	var q dto.AuditListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f := q.Filter()

	logs, total, err := c.AuditService.List(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p := f.Pagination.Normalized()
	util.Page(ctx, logs, total, p.Page, p.Limit)
}

// ExportAuditLogs accepts the list filters as query parameters. Paging is
// ignored; every match up to the export cap is written.
func (c *AuditController) ExportAuditLogs(ctx *gin.Context) {
	var q dto.AuditListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}

	res, err := c.AuditService.Export(ctx.Request.Context(), util.GetPrincipal(ctx), q.Filter())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}
