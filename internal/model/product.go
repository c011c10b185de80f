package model

// Allowed product categories.
var ProductCategories = []string{"Electronics", "Books", "Clothing", "Sports"}

// Product is a catalogue entry held by the product store.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name" validate:"required,notblank,min=3,max=100" required:"true" minLength:"3" maxLength:"100"`
	Price    float64 `json:"price" validate:"gt=0" exclusiveMinimum:"0"`
	Category string  `json:"category" validate:"required,notblank,category" required:"true" enum:"Electronics,Books,Clothing,Sports"`
}
