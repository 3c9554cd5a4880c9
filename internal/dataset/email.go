package dataset

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidEmail is the EmailValidator used by the pipeline.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email,max=254") == nil
}
