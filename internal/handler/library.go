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

// LibraryService is the library surface used by LibraryHandler.
type LibraryService interface {
	AddEntry(ctx context.Context, userID string, input service.AddEntryInput) (*model.LibraryEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID string, input service.UpdateEntryInput) (*model.LibraryEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
	ListShelf(ctx context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error)
	Recent(ctx context.Context, userID string) ([]model.ShelfBook, error)
}

// LibraryHandler handles the reader's reading lists.
type LibraryHandler struct {
	svc      LibraryService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(svc LibraryService, validate *validation.Validator, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{svc: svc, validate: validate, logger: orDefault(logger)}
}

// Shelf handles GET /api/v1/library/{list} for read, progress and future.
func (h *LibraryHandler) Shelf(w http.ResponseWriter, r *http.Request) {
	status, ok := model.ParseListSlug(chi.URLParam(r, "list"))
	if !ok {
		writeError(w, http.StatusNotFound, "LIST_NOT_FOUND", "Unknown reading list")
		return
	}

	books, err := h.svc.ListShelf(r.Context(), auth.UserIDFromContext(r.Context()), status)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToShelfResponse(books))
}

// Recent handles GET /api/v1/library/recent.
func (h *LibraryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Recent(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecentResponse(books))
}

// Add handles POST /api/v1/library.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddEntryRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	status, _ := model.ParseListSlug(req.List)

	entry, err := h.svc.AddEntry(r.Context(), auth.UserIDFromContext(r.Context()), service.AddEntryInput{
		BookID: req.BookID,
		Status: status,
		Rating: req.Rating,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToEntryResponse(entry))
}

// Update handles PATCH /api/v1/library/{id}.
func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateEntryRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	input := service.UpdateEntryInput{Rating: req.Rating}
	if req.List != nil {
		status, _ := model.ParseListSlug(*req.List)
		input.Status = &status
	}

	entry, err := h.svc.UpdateEntry(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry))
}

// Delete handles DELETE /api/v1/library/{id}.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEntry(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
