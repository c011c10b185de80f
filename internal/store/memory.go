package store

import (
	"strings"
	"sync"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// NameRequiredMessage is the message of the ValidationError returned by Create
// when the trimmed name is empty.
const NameRequiredMessage = "name is required"

// ItemStore is an in-memory ItemRepository. Every operation holds a single
// exclusive lock for its whole body.
type ItemStore struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int
}

// NewItemStore creates an empty ItemStore whose first ID is 1.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items:  make([]model.Item, 0),
		nextID: 1,
	}
}

// List returns a snapshot of all items in insertion order.
func (s *ItemStore) List() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}

	return items
}

// GetByID retrieves an item by its ID.
func (s *ItemStore) GetByID(id int) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Item{}, false
	}

	return s.items[idx].Clone(), true
}

// Create trims and validates the input, then stores it under the next ID.
// A blank name fails with a *ValidationError and consumes no ID.
func (s *ItemStore) Create(dto model.ItemCreate) (model.Item, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return model.Item{}, &ValidationError{Field: "name", Message: NameRequiredMessage}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.Item{
		ID:          s.nextID,
		Name:        name,
		Description: trimmed(dto.Description),
	}
	s.nextID++
	s.items = append(s.items, created)

	return created.Clone(), nil
}

// Update replaces the item with the given ID by a new value carrying the same
// ID at the same position. A nil or blank name keeps the existing name; the
// description is always overwritten, with nil or blank clearing it.
func (s *ItemStore) Update(id int, dto model.ItemUpdate) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Item{}, false
	}

	existing := s.items[idx]
	name := existing.Name
	if dto.Name != nil && strings.TrimSpace(*dto.Name) != "" {
		name = strings.TrimSpace(*dto.Name)
	}

	updated := model.Item{
		ID:          existing.ID,
		Name:        name,
		Description: trimmed(dto.Description),
	}
	s.items[idx] = updated

	return updated.Clone(), true
}

// Delete removes every item with the given ID and reports whether any was removed.
func (s *ItemStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	removed := len(kept) < len(s.items)

	clear(s.items[len(kept):])
	s.items = kept

	return removed
}

// Len returns the number of stored items.
func (s *ItemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// indexOf returns the position of the item with the given ID, or -1.
// The caller must hold s.mu.
func (s *ItemStore) indexOf(id int) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// trimmed trims a description. Nil and blank descriptions are both absent.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
