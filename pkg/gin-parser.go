package pkg

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseAndValidate binds the JSON body into dto and checks its validate tags.
func ParseAndValidate(c *gin.Context, dto any) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

// Validate checks the validate tags of an already populated value.
func Validate(v any) error {
	return validate.Struct(v)
}
