package company

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var websitePattern = regexp.MustCompile(
	`^(?:https?://)?(?:www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_\+.~#?&/=]*)$`,
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return jsonName(f.Tag.Get("json"))
	})
	if err := v.RegisterValidation("website", func(fl validator.FieldLevel) bool {
		return websitePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'website' validator: %w", err)
	}
	return v, nil
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v, err := newValidator()
		if err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Validate checks attrs against the company schema and reports every violated
// field in one validation error.
func Validate(attrs Attributes) error {
	err := getValidator().Struct(attrs)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, messageFor(fe))
	}
	return domain.NewValidationError(strings.Join(msgs, ", "))
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", fe.Field())
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "website":
		return "Please use a valid URL with HTTP or HTTPS"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}
