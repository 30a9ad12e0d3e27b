package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"hikvision-integration/pkg/worktime"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	Validate.RegisterValidation("hhmm", validateHHMM)
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := worktime.ParseClock(fl.Field().String())
	return err == nil
}

type ErrorResponse struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"message"`
}

func ValidateStruct(s interface{}) []*ErrorResponse {
	var errs []*ErrorResponse
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{Msg: err.Error()}}
	}

	for _, err := range verrs {
		var element ErrorResponse
		element.Field = err.Field()
		element.Tag = err.Tag()

		switch err.Tag() {
		case "required":
			element.Msg = fmt.Sprintf("field '%s' is required", element.Field)
		case "required_if":
			element.Msg = fmt.Sprintf("field '%s' is required when %s", element.Field, err.Param())
		case "url":
			element.Msg = fmt.Sprintf("field '%s' must be a valid URL", element.Field)
		case "oneof":
			element.Msg = fmt.Sprintf("field '%s' must be one of: %s", element.Field, err.Param())
		case "numeric":
			element.Msg = fmt.Sprintf("field '%s' must be numeric", element.Field)
		case "hhmm":
			element.Msg = fmt.Sprintf("field '%s' must be a time of day as HH:mm", element.Field)
		case "schedule":
			element.Msg = fmt.Sprintf("field '%s' must be a cron expression or recurrence rule", element.Field)
		case "timezone":
			element.Msg = fmt.Sprintf("field '%s' must be an IANA timezone", element.Field)
		default:
			element.Msg = fmt.Sprintf("field '%s' failed validation '%s'", element.Field, element.Tag)
		}
		errs = append(errs, &element)
	}
	return errs
}
