package validator

import (
	"appointment-scheduler/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("appt_status", validateAppointmentStatus)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "appt_status":
				errors[field] = field + " must be one of pending, confirmed, cancelled"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	_, ok := entity.ParseAppointmentStatus(fl.Field().String())
	return ok
}
