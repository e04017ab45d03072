package model

import "time"

// Review is a reader's text review of a book. One per user per book.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// BookReviews is the review listing of a book as seen by one reader.
type BookReviews struct {
	Reviews  []Review
	CanWrite bool
}
