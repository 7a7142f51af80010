package webserver

import (
	"github.com/go-playground/validator/v10"
	"github.com/talkincode/storefront/internal/validate"
)

// Validator echo.Validator running the declarative `validate` tag rules
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validate.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
