package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/lac-hong-legacy/learning_hub/model"
)

var validate *validator.Validate

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", validateSlug)
	validate.RegisterValidation("catalog_page", validateCatalogPage)
	validate.RegisterValidation("catalog_section", validateCatalogSection)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

func validateCatalogPage(fl validator.FieldLevel) bool {
	return model.IsCatalogPage(fl.Field().String())
}

func validateCatalogSection(fl validator.FieldLevel) bool {
	_, ok := model.FindSection(fl.Field().String())
	return ok
}

type ValidationError struct {
	Field   string `json:"field" example:"scrollDepth"`
	Message string `json:"message" example:"scrollDepth must be at most 100"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "hexadecimal":
				message = fieldError.Field() + " must be a hex string"
			case "slug":
				message = fieldError.Field() + " must be a lowercase slug"
			case "catalog_page":
				message = fieldError.Field() + " is not a known page"
			case "catalog_section":
				message = fieldError.Field() + " is not a known section"
			case "startswith":
				message = fieldError.Field() + " must start with " + fieldError.Param()
			case "dive":
				message = fieldError.Field() + " contains invalid items"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

type Validator interface {
	Validate() error
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
