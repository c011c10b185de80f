package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestItem_Clone(t *testing.T) {
	// Arrange
	original := Item{ID: 1, Name: "Pen", Description: Ptr("Blue")}

	// Act
	clone := original.Clone()
	*clone.Description = "Red"
	clone.Name = "Book"

	// Assert
	if *original.Description != "Blue" {
		t.Errorf("original description = %q, want Blue", *original.Description)
	}
	if original.Name != "Pen" {
		t.Errorf("original name = %q, want Pen", original.Name)
	}
}

func TestItem_Clone_NilDescription(t *testing.T) {
	clone := Item{ID: 2, Name: "Book"}.Clone()

	if clone.Description != nil {
		t.Errorf("Description = %v, want nil", clone.Description)
	}
}

func TestItem_JSON(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "with description",
			item: Item{ID: 1, Name: "Pen", Description: Ptr("Blue")},
			want: `{"id":1,"name":"Pen","description":"Blue"}`,
		},
		{
			name: "null description is kept",
			item: Item{ID: 2, Name: "Book"},
			want: `{"id":2,"name":"Book","description":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			data, err := json.Marshal(tt.item)

			// Assert
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestItemUpdate_DistinguishesMissingName(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName *string
	}{
		{"name absent", `{"description":"x"}`, nil},
		{"name null", `{"name":null}`, nil},
		{"name empty", `{"name":""}`, Ptr("")},
		{"name set", `{"name":"Pen"}`, Ptr("Pen")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			var dto ItemUpdate
			err := json.Unmarshal([]byte(tt.body), &dto)

			// Assert
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			switch {
			case tt.wantName == nil && dto.Name != nil:
				t.Errorf("Name = %q, want nil", *dto.Name)
			case tt.wantName != nil && (dto.Name == nil || *dto.Name != *tt.wantName):
				t.Errorf("Name = %v, want %q", dto.Name, *tt.wantName)
			}
		})
	}
}

func TestNewItemEvent(t *testing.T) {
	// Arrange
	before := time.Now().UTC()
	item := &Item{ID: 3, Name: "Cup"}

	// Act
	event := NewItemEvent(ItemEventCreated, item.ID, item)

	// Assert
	if event.Type != ItemEventCreated || event.ID != 3 || event.Item != item {
		t.Errorf("event = %+v", event)
	}
	if event.Timestamp.Before(before) || event.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want UTC time after %v", event.Timestamp, before)
	}
}

func TestItemEvent_DeletedOmitsItem(t *testing.T) {
	// Arrange
	event := ItemEvent{Type: ItemEventDeleted, ID: 7, Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	// Act
	data, err := json.Marshal(event)

	// Assert
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"type":"item_deleted","id":7,"timestamp":"2024-01-02T03:04:05Z"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
