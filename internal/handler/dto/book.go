package dto

import (
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// BooksResponse lists books.
type BooksResponse struct {
	Books []model.BookSummary `json:"books"`
}

// SearchResponse lists search hits.
type SearchResponse struct {
	Count int                 `json:"count"`
	Books []model.BookSummary `json:"books"`
}

// CreateBookRequest is the body of POST /admin/books.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
	Genre  string `json:"genre" validate:"required,max=100"`
	Pages  int    `json:"pages" validate:"gte=0"`
}

// NoRecommendationsMessage is returned to readers with an empty library.
const NoRecommendationsMessage = "No recommendations yet."

// NoReviewsMessage is returned for a book nobody reviewed.
const NoReviewsMessage = "No reviews about this book"

// ReviewResponse is one review in a listing.
type ReviewResponse struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Created  string `json:"created"` // dd/mm/yyyy
}

// ReviewsResponse lists the reviews of a book.
type ReviewsResponse struct {
	Count    int              `json:"count"`
	Reviews  []ReviewResponse `json:"reviews"`
	CanWrite bool             `json:"can_write"`
}

// ToReviewsResponse converts a review listing.
func ToReviewsResponse(r *model.BookReviews) ReviewsResponse {
	out := ReviewsResponse{
		Count:    len(r.Reviews),
		Reviews:  make([]ReviewResponse, len(r.Reviews)),
		CanWrite: r.CanWrite,
	}
	for i, review := range r.Reviews {
		out.Reviews[i] = ReviewResponse{
			Username: review.Username,
			Text:     review.Text,
			Created:  review.CreatedAt.Format("02/01/2006"),
		}
	}
	return out
}

// CreateReviewRequest is the body of POST /books/{id}/reviews.
type CreateReviewRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}
