package dto

import (
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// AddEntryRequest is the body of POST /library.
// List is one of read, progress or future.
type AddEntryRequest struct {
	BookID string `json:"book_id" validate:"required"`
	List   string `json:"list" validate:"required,oneof=read progress future"`
	Rating int    `json:"rate" validate:"gte=0,lte=5"`
}

// UpdateEntryRequest is the body of PATCH /library/{id}.
type UpdateEntryRequest struct {
	List   *string `json:"list" validate:"omitempty,oneof=read progress future"`
	Rating *int    `json:"rate" validate:"omitempty,gte=0,lte=5"`
}

// EntryResponse is a single library entry.
type EntryResponse struct {
	ID      string    `json:"id"`
	BookID  string    `json:"book_id"`
	List    string    `json:"list"`
	Rating  int       `json:"rate"`
	AddedAt time.Time `json:"added_at"`
}

// ToEntryResponse converts a LibraryEntry.
func ToEntryResponse(e *model.LibraryEntry) EntryResponse {
	return EntryResponse{
		ID:      e.ID,
		BookID:  e.BookID,
		List:    string(e.Status),
		Rating:  e.Rating,
		AddedAt: e.AddedAt,
	}
}

// ShelfBookResponse is a book on a reading list with the reader's rating.
type ShelfBookResponse struct {
	ID      string `json:"id"`
	EntryID string `json:"entry_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Genre   string `json:"genre"`
	Rating  int    `json:"rate"`
}

// ShelfResponse lists one reading list.
type ShelfResponse struct {
	Count int                 `json:"count"`
	Books []ShelfBookResponse `json:"books"`
}

// ToShelfResponse converts a reading list.
func ToShelfResponse(books []model.ShelfBook) ShelfResponse {
	out := ShelfResponse{Count: len(books), Books: make([]ShelfBookResponse, len(books))}
	for i, b := range books {
		out.Books[i] = ShelfBookResponse{
			ID:      b.BookID,
			EntryID: b.EntryID,
			Title:   b.Title,
			Author:  b.Author,
			Genre:   b.Genre,
			Rating:  b.Rating,
		}
	}
	return out
}

// RecentBookResponse is one of the latest additions.
type RecentBookResponse struct {
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	List   string `json:"list"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating int    `json:"rate"`
}

// RecentResponse lists the latest additions, newest first.
type RecentResponse struct {
	Books []RecentBookResponse `json:"books"`
}

// ToRecentResponse converts recent entries.
func ToRecentResponse(books []model.ShelfBook) RecentResponse {
	out := RecentResponse{Books: make([]RecentBookResponse, len(books))}
	for i, b := range books {
		out.Books[i] = RecentBookResponse{
			ID:     b.EntryID,
			BookID: b.BookID,
			List:   string(b.Status),
			Title:  b.Title,
			Author: b.Author,
			Rating: b.Rating,
		}
	}
	return out
}
