// Package validation maps request payload types to their validation rules.
//
// Rules are registered once at startup, keyed by the payload's Go type.
// Validate checks a list of payloads and stops at the first one that fails.
package validation

import (
	"reflect"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// Func validates a payload and returns its field errors, or nil when valid.
type Func func(v any) []model.FieldError

// Registry holds the validation rules for each registered payload type.
type Registry struct {
	validators map[reflect.Type]Func
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[reflect.Type]Func),
	}
}

// Register installs fn as the validator for values of type T, replacing any
// validator registered earlier for the same type.
func Register[T any](r *Registry, fn func(T) []model.FieldError) {
	r.validators[reflect.TypeFor[T]()] = func(v any) []model.FieldError {
		return fn(v.(T))
	}
}

// Has reports whether a validator is registered for the type of v.
func (r *Registry) Has(v any) bool {
	_, _, ok := r.lookup(v)
	return ok
}

// Validate checks each argument in order. Nil arguments and arguments without
// a registered validator are skipped. The errors of the first failing argument
// are returned; nil means every argument is valid.
func (r *Registry) Validate(args ...any) []model.FieldError {
	for _, arg := range args {
		fn, value, ok := r.lookup(arg)
		if !ok {
			continue
		}

		if errs := fn(value); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

// lookup finds the validator for v. A non-nil pointer whose own type is not
// registered falls back to the validator of the value it points to.
func (r *Registry) lookup(v any) (Func, any, bool) {
	if v == nil {
		return nil, nil, false
	}

	t := reflect.TypeOf(v)
	if fn, ok := r.validators[t]; ok {
		return fn, v, true
	}

	if t.Kind() != reflect.Pointer {
		return nil, nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return nil, nil, false
	}

	fn, ok := r.validators[t.Elem()]
	if !ok {
		return nil, nil, false
	}

	return fn, rv.Elem().Interface(), true
}
