// Package model defines data structures used throughout the application.
package model

import "time"

// Item is a record held by the item store.
// Description is nil when the item has no description.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ItemCreate is the input for creating an item.
type ItemCreate struct {
	Name        string  `json:"name" required:"true"`
	Description *string `json:"description"`
}

// ItemUpdate is a partial update for an item. A nil or blank Name keeps the
// existing name; Description always replaces the stored one, nil included.
type ItemUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Clone returns a copy of the item that shares no memory with the receiver.
func (i Item) Clone() Item {
	if i.Description != nil {
		d := *i.Description
		i.Description = &d
	}
	return i
}

// Item event types published on the item feed.
const (
	ItemEventCreated = "item_created"
	ItemEventUpdated = "item_updated"
	ItemEventDeleted = "item_deleted"
)

// ItemEvent describes a change to the item store. Item is nil for deletions.
type ItemEvent struct {
	Type      string    `json:"type"`
	ID        int       `json:"id"`
	Item      *Item     `json:"item,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEvent creates an event stamped with the current UTC time.
func NewItemEvent(eventType string, id int, item *Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		ID:        id,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
