package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/handler/dto"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/service"
	"github.com/Gurova-J/bookspace-backend/internal/validation"
)

// CatalogService is the catalog surface used by BookHandler.
type CatalogService interface {
	CreateBook(ctx context.Context, input service.CreateBookInput) (*model.Book, error)
	GetBook(ctx context.Context, id string) (*model.Book, error)
	TopBooks(ctx context.Context) ([]model.BookSummary, error)
	Search(ctx context.Context, query string) ([]model.BookSummary, error)
}

// ReviewService is the review surface used by BookHandler.
type ReviewService interface {
	ListReviews(ctx context.Context, userID, bookID string) (*model.BookReviews, error)
	CreateReview(ctx context.Context, userID, bookID, text string) (*model.Review, error)
}

// BookHandler handles catalog and review requests.
type BookHandler struct {
	catalog  CatalogService
	reviews  ReviewService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(catalog CatalogService, reviews ReviewService, validate *validation.Validator, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		catalog:  catalog,
		reviews:  reviews,
		validate: validate,
		logger:   orDefault(logger),
	}
}

// Top handles GET /api/v1/books/top.
func (h *BookHandler) Top(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.TopBooks(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	if books == nil {
		books = []model.BookSummary{}
	}
	writeJSON(w, http.StatusOK, dto.BooksResponse{Books: books})
}

// Search handles GET /api/v1/books/search?q=.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	if books == nil {
		books = []model.BookSummary{}
	}
	writeJSON(w, http.StatusOK, dto.SearchResponse{Count: len(books), Books: books})
}

// Get handles GET /api/v1/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Create handles POST /api/v1/admin/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	book, err := h.catalog.CreateBook(r.Context(), service.CreateBookInput{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Pages:  req.Pages,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("book_created",
		"book_id", book.ID,
		"admin_id", auth.UserIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusCreated, book)
}

// ListReviews handles GET /api/v1/books/{id}/reviews.
func (h *BookHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	if len(reviews.Reviews) == 0 {
		writeJSON(w, http.StatusOK, struct {
			Message  string `json:"message"`
			CanWrite bool   `json:"can_write"`
		}{dto.NoReviewsMessage, reviews.CanWrite})
		return
	}
	writeJSON(w, http.StatusOK, dto.ToReviewsResponse(reviews))
}

// CreateReview handles POST /api/v1/books/{id}/reviews.
func (h *BookHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReviewRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	_, err := h.reviews.CreateReview(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Successfully created")
}
