package util

import (
	"encoding/json"
	"sync"

	"algoritmia_backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var initValidator sync.Once

// InitValidator installs the shared rules on gin's binding engine.
func InitValidator() {
	initValidator.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Register(v)
		}
	})
}

// BindJSON binds and validates the body. On failure it writes the 400
// response and returns false.
func BindJSON(c *gin.Context, req interface{}) bool {
	return bindResult(c, c.ShouldBindJSON(req))
}

// BindQuery is BindJSON for query strings.
func BindQuery(c *gin.Context, req interface{}) bool {
	return bindResult(c, c.ShouldBindQuery(req))
}

func bindResult(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if fields, ok := validation.Fields(err); ok {
		ValidationFailed(c, fields)
		return false
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		ValidationFailed(c, []validation.FieldError{{Field: typeErr.Field, Error: "invalid type, expected " + typeErr.Type.String()}})
		return false
	}
	BadRequest(c, err.Error())
	return false
}
