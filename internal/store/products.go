package store

import (
	"sync"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// DefaultProducts is the catalogue a new ProductStore starts with.
func DefaultProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Laptop", Price: 75000, Category: "Electronics"},
		{ID: 2, Name: "Mouse", Price: 500, Category: "Electronics"},
	}
}

// ProductStore is an in-memory ProductRepository.
type ProductStore struct {
	mu       sync.Mutex
	products []model.Product
}

// NewProductStore creates a ProductStore holding a copy of seed.
func NewProductStore(seed ...model.Product) *ProductStore {
	products := make([]model.Product, len(seed))
	copy(products, seed)

	return &ProductStore{products: products}
}

// List returns a copy of all products in insertion order.
func (s *ProductStore) List() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]model.Product, len(s.products))
	copy(products, s.products)

	return products
}

// GetByID retrieves a product by its ID.
func (s *ProductStore) GetByID(id int) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Add stores p under one more than the highest existing ID (1 when empty).
// Any ID carried by p is ignored.
func (s *ProductStore) Add(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, existing := range s.products {
		maxID = max(maxID, existing.ID)
	}

	p.ID = maxID + 1
	s.products = append(s.products, p)

	return p
}

// Update overwrites name, price and category of the product with p.ID.
func (s *ProductStore) Update(p model.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != p.ID {
			continue
		}
		s.products[i].Name = p.Name
		s.products[i].Price = p.Price
		s.products[i].Category = p.Category
		return true
	}
	return false
}

// Delete removes the first product with the given ID.
func (s *ProductStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return true
		}
	}
	return false
}
