package model

import "time"

// LibraryEventKind names what happened to a library entry.
type LibraryEventKind string

const (
	EventEntryAdded   LibraryEventKind = "entry_added"
	EventEntryUpdated LibraryEventKind = "entry_updated"
	EventEntryRemoved LibraryEventKind = "entry_removed"
)

// IsValid checks if the kind is known.
func (k LibraryEventKind) IsValid() bool {
	switch k {
	case EventEntryAdded, EventEntryUpdated, EventEntryRemoved:
		return true
	}
	return false
}

// LibraryEvent records a change to a user's library.
type LibraryEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	Kind    LibraryEventKind `json:"kind"`
	UserID  string           `json:"user_id"`
	BookID  string           `json:"book_id"`
	EntryID string           `json:"entry_id"`
	Status  ListStatus       `json:"list,omitempty"`
	Rating  int              `json:"rate"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"` // DB insertion time
}
