package service

import (
	"fmt"

	"blogr/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// validateStruct reports the first failing field of s as a ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validate input")
	}

	fe := verrs[0]
	return &models.ValidationError{
		Field:   fe.Field(),
		Message: fmt.Sprintf("%s is required.", fe.Field()),
	}
}
