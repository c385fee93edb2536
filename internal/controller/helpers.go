package controller

import (
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// idParam reads a numeric path parameter, answering 400 when it is not one.
func idParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParamID(ctx, name)
	if err != nil {
		util.HandleError(ctx, err)
		return 0, false
	}
	return id, true
}
