package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("recipe_category", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCategory(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("recipe_difficulty", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDifficulty(fl.Field().String())
		return err == nil
	})

	return v
}

// validateStruct runs the struct tags of s and reports the first failing field
// as a *models.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &models.ValidationError{
			Field:  strings.ToLower(fe.Field()),
			Reason: formatFieldError(fe),
		}
	}
	return err
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "recipe_category":
		return "must be one of Dessert, Main Course, Appetizer, Drink, Other"
	case "recipe_difficulty":
		return "must be one of Easy, Medium, Hard"
	default:
		return "is invalid"
	}
}
