package dto

import (
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	identificationPattern = regexp.MustCompile(`^[0-9]{10,20}$`)
	phonePattern          = regexp.MustCompile(`^[0-9+\-\s()]{7,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so errors match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("identification", matchPattern(identificationPattern)); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("phone", matchPattern(phonePattern)); err != nil {
		panic(err)
	}
	return v
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// validateStruct runs the struct tags of req and reports every failing field.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
		return apperrors.NewFieldsValidationError(fieldErrs[0].Field(), fields)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "identification":
		return "identification must contain between 10 and 20 digits"
	case "phone":
		return "invalid phone format"
	default:
		return fe.Field() + " is invalid"
	}
}
