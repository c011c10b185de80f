package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// CategoryTag is the struct tag rule accepting only model.ProductCategories.
const CategoryTag = "category"

// NotBlankTag is the struct tag rule rejecting strings made only of white space.
const NotBlankTag = "notblank"

// NewStructValidator returns a validator.Validate with the custom rules of this
// service installed.
func NewStructValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation(CategoryTag, validCategory); err != nil {
		return nil, fmt.Errorf("registering %s rule: %w", CategoryTag, err)
	}

	if err := v.RegisterValidation(NotBlankTag, notBlank); err != nil {
		return nil, fmt.Errorf("registering %s rule: %w", NotBlankTag, err)
	}

	return v, nil
}

// NewDefaultRegistry builds the registry used by the HTTP API.
func NewDefaultRegistry() (*Registry, error) {
	v, err := NewStructValidator()
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	Register(r, Struct[model.Product](v))

	return r, nil
}

// Struct adapts the `validate` struct tags of T into a registry function.
func Struct[T any](v *validator.Validate) func(T) []model.FieldError {
	return func(value T) []model.FieldError {
		err := v.Struct(value)
		if err == nil {
			return nil
		}

		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []model.FieldError{{ErrorMessage: err.Error()}}
		}

		out := make([]model.FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, model.FieldError{
				PropertyName: fe.StructField(),
				ErrorMessage: message(fe),
			})
		}
		return out
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validCategory(fl validator.FieldLevel) bool {
	return slices.Contains(model.ProductCategories, fl.Field().String())
}

func message(fe validator.FieldError) string {
	field := fe.StructField()

	switch fe.Tag() {
	case "required", NotBlankTag:
		return fmt.Sprintf("'%s' must not be empty.", field)
	case "min":
		return fmt.Sprintf("'%s' must be at least %s characters. You entered %d characters.",
			field, fe.Param(), runeCount(fe.Value()))
	case "max":
		return fmt.Sprintf("'%s' must be %s characters or fewer. You entered %d characters.",
			field, fe.Param(), runeCount(fe.Value()))
	case "gt":
		return fmt.Sprintf("'%s' must be greater than '%s'.", field, fe.Param())
	case CategoryTag:
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(model.ProductCategories, ", "))
	default:
		return fmt.Sprintf("'%s' is not valid.", field)
	}
}

func runeCount(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	return utf8.RuneCountInString(s)
}
