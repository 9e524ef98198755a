package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is a single to-do entry.
type Item struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`

	// Description holds overflow text. Empty means no description.
	Description string `json:"description,omitempty"`

	// Links is the item's link table in insertion order. A link may remain
	// in the table after its marker has been removed from the text.
	Links []Link `json:"links"`

	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewItem creates an item stamped with a fresh id and the current time.
func NewItem(title, description string, links []Link) Item {
	if links == nil {
		links = []Link{}
	}
	return Item{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Links:       links,
		CreatedAt:   time.Now(),
	}
}

// UnmarshalJSON accepts records written before items carried links.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Links == nil {
		decoded.Links = []Link{}
	}
	*i = Item(decoded)
	return nil
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Links = CloneLinks(i.Links)
	return i
}

// CloneItems deep-copies a list of items.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for idx, it := range items {
		out[idx] = it.Clone()
	}
	return out
}
