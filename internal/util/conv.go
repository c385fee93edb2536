package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MustParseUint parses s as an unsigned id and returns 0 when it is not one.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParamID reads a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	id := MustParseUint(c.Param(name))
	if id == 0 {
		return 0, FieldInvalid(name, "%s must be a positive integer", name)
	}
	return id, nil
}
