package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/service"
)

const testUserID = "01HUSER0000000000000000000"

// serve routes a single request through a chi router so URL params resolve.
// The request carries an auth context for testUserID.
func serve(method, pattern, target, body string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, fn)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer bs_test_abc_def")
	req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{
		SessionID: "sess-1",
		UserID:    testUserID,
		Role:      model.RoleUser,
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type fakeAccount struct {
	registered service.RegisterInput
	user       *model.User
	login      *service.LoginResult
	err        error
	loggedOut  string
}

func (f *fakeAccount) Register(ctx context.Context, input service.RegisterInput) (*model.User, error) {
	f.registered = input
	return f.user, f.err
}

func (f *fakeAccount) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return f.login, f.err
}

func (f *fakeAccount) Logout(ctx context.Context, ac *model.AuthContext, token string) error {
	if ac == nil {
		return service.ErrUnauthorized
	}
	f.loggedOut = token
	return f.err
}

type fakeProfile struct {
	profile *model.Profile
	update  model.ProfileUpdate
	err     error
}

func (f *fakeProfile) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfile) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	f.update = update
	return f.profile, f.err
}

type fakeStats struct {
	kind  model.RangeKind
	stats *model.RangeStats
	err   error
}

func (f *fakeStats) GetStats(ctx context.Context, userID string, kind model.RangeKind) (*model.RangeStats, error) {
	f.kind = kind
	return f.stats, f.err
}

type fakePlan struct {
	update model.PlanUpdate
	result *service.PlanResult
	err    error
}

func (f *fakePlan) UpdatePlanTargets(ctx context.Context, userID string, update model.PlanUpdate) (*service.PlanResult, error) {
	f.update = update
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &service.PlanResult{}, nil
	}
	return f.result, nil
}

type fakeRecommender struct {
	recs *model.Recommendations
	err  error
}

func (f *fakeRecommender) Recommend(ctx context.Context, userID string) (*model.Recommendations, error) {
	return f.recs, f.err
}

type fakeCatalog struct {
	books   []model.BookSummary
	book    *model.Book
	created service.CreateBookInput
	query   string
	err     error
}

func (f *fakeCatalog) CreateBook(ctx context.Context, input service.CreateBookInput) (*model.Book, error) {
	f.created = input
	if f.err != nil {
		return nil, f.err
	}
	return &model.Book{ID: "b-new", Title: input.Title, Author: input.Author, Genre: input.Genre, Pages: input.Pages}, nil
}

func (f *fakeCatalog) GetBook(ctx context.Context, id string) (*model.Book, error) {
	if f.book == nil || f.book.ID != id {
		return nil, service.ErrBookNotFound
	}
	return f.book, nil
}

func (f *fakeCatalog) TopBooks(ctx context.Context) ([]model.BookSummary, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]model.BookSummary, error) {
	f.query = query
	if strings.TrimSpace(query) == "" {
		return nil, service.ErrInvalidInput
	}
	return f.books, f.err
}

type fakeReviews struct {
	listing *model.BookReviews
	text    string
	bookID  string
	err     error
}

func (f *fakeReviews) ListReviews(ctx context.Context, userID, bookID string) (*model.BookReviews, error) {
	f.bookID = bookID
	return f.listing, f.err
}

func (f *fakeReviews) CreateReview(ctx context.Context, userID, bookID, text string) (*model.Review, error) {
	f.bookID = bookID
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return &model.Review{ID: "r1", UserID: userID, BookID: bookID, Text: text}, nil
}

type fakeLibrary struct {
	added   service.AddEntryInput
	updated service.UpdateEntryInput
	entryID string
	status  model.ListStatus
	shelf   []model.ShelfBook
	err     error
}

func (f *fakeLibrary) AddEntry(ctx context.Context, userID string, input service.AddEntryInput) (*model.LibraryEntry, error) {
	f.added = input
	if f.err != nil {
		return nil, f.err
	}
	return &model.LibraryEntry{ID: "e1", UserID: userID, BookID: input.BookID, Status: input.Status, Rating: input.Rating}, nil
}

func (f *fakeLibrary) UpdateEntry(ctx context.Context, userID, entryID string, input service.UpdateEntryInput) (*model.LibraryEntry, error) {
	f.entryID = entryID
	f.updated = input
	if f.err != nil {
		return nil, f.err
	}
	entry := &model.LibraryEntry{ID: entryID, UserID: userID, BookID: "b1", Status: model.StatusWantToRead}
	if input.Status != nil {
		entry.Status = *input.Status
	}
	if input.Rating != nil {
		entry.Rating = *input.Rating
	}
	return entry, nil
}

func (f *fakeLibrary) DeleteEntry(ctx context.Context, userID, entryID string) error {
	f.entryID = entryID
	return f.err
}

func (f *fakeLibrary) ListShelf(ctx context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error) {
	f.status = status
	return f.shelf, f.err
}

func (f *fakeLibrary) Recent(ctx context.Context, userID string) ([]model.ShelfBook, error) {
	return f.shelf, f.err
}
