package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

type widget struct {
	Size int
}

type gadget struct {
	Label string
}

func widgetRule(w widget) []model.FieldError {
	if w.Size <= 0 {
		return []model.FieldError{{PropertyName: "Size", ErrorMessage: "size must be positive"}}
	}
	return nil
}

func gadgetRule(g gadget) []model.FieldError {
	if g.Label == "" {
		return []model.FieldError{{PropertyName: "Label", ErrorMessage: "label required"}}
	}
	return nil
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()
	Register(r, widgetRule)
	Register(r, gadgetRule)

	tests := []struct {
		name      string
		args      []any
		wantProps []string
	}{
		{name: "no arguments", args: nil},
		{name: "valid argument", args: []any{widget{Size: 1}}},
		{name: "invalid argument", args: []any{widget{}}, wantProps: []string{"Size"}},
		{name: "nil argument skipped", args: []any{nil, widget{Size: 2}}},
		{name: "unregistered type skipped", args: []any{42, "text", widget{Size: 3}}},
		{
			name:      "first failing argument wins",
			args:      []any{widget{Size: 1}, gadget{}, widget{}},
			wantProps: []string{"Label"},
		},
		{name: "pointer falls back to element type", args: []any{&gadget{}}, wantProps: []string{"Label"}},
		{name: "nil pointer skipped", args: []any{(*gadget)(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := r.Validate(tt.args...)

			if len(tt.wantProps) == 0 {
				assert.Empty(t, errs)
				return
			}

			props := make([]string, 0, len(errs))
			for _, e := range errs {
				props = append(props, e.PropertyName)
			}
			assert.Equal(t, tt.wantProps, props)
		})
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	Register(r, widgetRule)
	Register(r, func(widget) []model.FieldError { return nil })

	assert.Empty(t, r.Validate(widget{}))
}

func TestRegistry_Has(t *testing.T) {
	r := NewRegistry()
	Register(r, widgetRule)

	assert.True(t, r.Has(widget{}))
	assert.True(t, r.Has(&widget{}))
	assert.False(t, r.Has(gadget{}))
	assert.False(t, r.Has(nil))
}

func TestDefaultRegistry_Product(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	tests := []struct {
		name     string
		product  model.Product
		wantErrs []model.FieldError
	}{
		{
			name:    "valid product",
			product: model.Product{Name: "Laptop", Price: 75000, Category: "Electronics"},
		},
		{
			name:    "empty name",
			product: model.Product{Name: "", Price: 1, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must not be empty."},
			},
		},
		{
			name:    "blank name",
			product: model.Product{Name: "   ", Price: 1, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must not be empty."},
			},
		},
		{
			name:    "name padded to length with spaces",
			product: model.Product{Name: " \t  ", Price: 1, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must not be empty."},
			},
		},
		{
			name:    "short name",
			product: model.Product{Name: "ab", Price: 1, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must be at least 3 characters. You entered 2 characters."},
			},
		},
		{
			name:    "long name",
			product: model.Product{Name: strings.Repeat("x", 101), Price: 1, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must be 100 characters or fewer. You entered 101 characters."},
			},
		},
		{
			name:    "zero price",
			product: model.Product{Name: "Book", Price: 0, Category: "Books"},
			wantErrs: []model.FieldError{
				{PropertyName: "Price", ErrorMessage: "'Price' must be greater than '0'."},
			},
		},
		{
			name:    "unknown category",
			product: model.Product{Name: "Book", Price: 5, Category: "Food"},
			wantErrs: []model.FieldError{
				{PropertyName: "Category", ErrorMessage: "Category must be one of: Electronics, Books, Clothing, Sports"},
			},
		},
		{
			name:    "empty category",
			product: model.Product{Name: "Book", Price: 5},
			wantErrs: []model.FieldError{
				{PropertyName: "Category", ErrorMessage: "'Category' must not be empty."},
			},
		},
		{
			name:    "blank category",
			product: model.Product{Name: "Book", Price: 5, Category: "   "},
			wantErrs: []model.FieldError{
				{PropertyName: "Category", ErrorMessage: "'Category' must not be empty."},
			},
		},
		{
			name:    "every field invalid",
			product: model.Product{Name: "x", Price: -1, Category: "Toys"},
			wantErrs: []model.FieldError{
				{PropertyName: "Name", ErrorMessage: "'Name' must be at least 3 characters. You entered 1 characters."},
				{PropertyName: "Price", ErrorMessage: "'Price' must be greater than '0'."},
				{PropertyName: "Category", ErrorMessage: "Category must be one of: Electronics, Books, Clothing, Sports"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := r.Validate(tt.product)

			if tt.wantErrs == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantErrs, errs)
		})
	}
}

func TestDefaultRegistry_ItemPayloadsHaveNoRules(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	assert.False(t, r.Has(model.ItemCreate{}))
	assert.Empty(t, r.Validate(model.ItemCreate{}))
}
