package api

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding rules request structs use.
// "score" accepts a predicted goal count between 0 and maxScore.
func RegisterValidators(maxScore int) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 0 && n <= int64(maxScore)
	})
}
