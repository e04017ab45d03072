package model

import "time"

// ListStatus is the reading list a library entry belongs to.
type ListStatus string

const (
	StatusDone       ListStatus = "done"
	StatusInProgress ListStatus = "in progress"
	StatusWantToRead ListStatus = "want to read"
)

// IsValid checks if the status is one of the three reading lists.
func (s ListStatus) IsValid() bool {
	switch s {
	case StatusDone, StatusInProgress, StatusWantToRead:
		return true
	}
	return false
}

// listSlugs maps URL path segments to reading lists.
var listSlugs = map[string]ListStatus{
	"read":     StatusDone,
	"progress": StatusInProgress,
	"future":   StatusWantToRead,
}

// ParseListSlug resolves a URL list name (read, progress, future).
func ParseListSlug(slug string) (ListStatus, bool) {
	s, ok := listSlugs[slug]
	return s, ok
}

// MaxEntryRating is the highest rating a reader can give a book.
const MaxEntryRating = 5

// LibraryEntry links a user to a book on one of the reading lists.
// The same book may appear in several entries of one user.
type LibraryEntry struct {
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	BookID  string     `json:"book_id"`
	Status  ListStatus `json:"list"`
	Rating  int        `json:"rate"`
	AddedAt time.Time  `json:"added_at"`
}

// ShelfBook is a library entry joined with its book.
// Rating is the reader's own rating, not the catalog average.
type ShelfBook struct {
	EntryID string     `json:"entry_id"`
	BookID  string     `json:"id"`
	Title   string     `json:"title"`
	Author  string     `json:"author"`
	Genre   string     `json:"genre"`
	Status  ListStatus `json:"list"`
	Rating  int        `json:"rate"`
	AddedAt time.Time  `json:"added_at"`
}

// StatusCounts holds the number of entries on each reading list.
type StatusCounts struct {
	Done       int
	InProgress int
	WantToRead int
}
