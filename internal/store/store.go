// Package store provides data storage interfaces and implementations.
package store

import "github.com/vyrodovalexey/vuenetcrud-server/internal/model"

// ValidationError reports caller-supplied data that violates a store invariant.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ItemRepository defines the operations of the item store.
// Lookups report absence with a false flag rather than an error.
type ItemRepository interface {
	// List returns a snapshot of all items in insertion order.
	List() []model.Item

	// GetByID retrieves an item by its ID.
	GetByID(id int) (model.Item, bool)

	// Create validates and stores a new item, assigning the next ID.
	Create(dto model.ItemCreate) (model.Item, error)

	// Update applies a partial update to an existing item.
	Update(id int, dto model.ItemUpdate) (model.Item, bool)

	// Delete removes the item with the given ID and reports whether it existed.
	Delete(id int) bool

	// Len returns the number of stored items.
	Len() int
}

// ProductRepository defines the operations of the product store.
type ProductRepository interface {
	List() []model.Product
	GetByID(id int) (model.Product, bool)
	Add(p model.Product) model.Product
	Update(p model.Product) bool
	Delete(id int) bool
}
