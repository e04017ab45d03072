package model

import (
	"strconv"
	"time"
)

// Book is a catalog entry.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Pages     int       `json:"pages"`
	Rating    float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}

// BookSummary is the short book shape shared by top, recommendation and search results.
type BookSummary struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Rating float64 `json:"rate"`
}

// Summary returns the short representation of the book.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		Rating: b.Rating,
	}
}

// CachedBook represents book data stored in a Redis hash.
type CachedBook struct {
	Title     string `redis:"title"`
	Author    string `redis:"author"`
	Genre     string `redis:"genre"`
	Pages     string `redis:"pages"`
	Rating    string `redis:"rate"`
	CreatedAt string `redis:"created_at"` // Unix timestamp
}

// ToBook converts CachedBook to the Book domain model.
func (c *CachedBook) ToBook(id string) *Book {
	book := &Book{
		ID:     id,
		Title:  c.Title,
		Author: c.Author,
		Genre:  c.Genre,
	}
	if pages, err := strconv.Atoi(c.Pages); err == nil {
		book.Pages = pages
	}
	if rate, err := strconv.ParseFloat(c.Rating, 64); err == nil {
		book.Rating = rate
	}
	if ts, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		book.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return book
}

// ToCachedBook converts Book to its Redis hash form.
func (b *Book) ToCachedBook() *CachedBook {
	return &CachedBook{
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Pages:     strconv.Itoa(b.Pages),
		Rating:    strconv.FormatFloat(b.Rating, 'f', -1, 64),
		CreatedAt: strconv.FormatInt(b.CreatedAt.Unix(), 10),
	}
}
