package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/cache"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// fakeStore is an in-memory stand-in for the Postgres repository.
type fakeStore struct {
	mu       sync.Mutex
	books    map[string]*model.Book
	entries  []*model.LibraryEntry
	plans    map[string]*model.PlanTargets
	users    map[string]*model.User
	sessions map[string]*model.Session
	reviews  []model.Review

	planUpdateErr error
	lastUsed      map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:    make(map[string]*model.Book),
		plans:    make(map[string]*model.PlanTargets),
		users:    make(map[string]*model.User),
		sessions: make(map[string]*model.Session),
		lastUsed: make(map[string]int),
	}
}

func (f *fakeStore) addBook(id, title, author, genre string, rate float64) *model.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &model.Book{ID: id, Title: title, Author: author, Genre: genre, Rating: rate}
	f.books[id] = b
	return b
}

func (f *fakeStore) addEntry(userID, bookID string, status model.ListStatus, addedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, &model.LibraryEntry{
		ID:      newID(),
		UserID:  userID,
		BookID:  bookID,
		Status:  status,
		AddedAt: addedAt,
	})
}

func (f *fakeStore) setPlan(userID string, week, month, year int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[userID] = &model.PlanTargets{UserID: userID, Week: week, Month: month, Year: year}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Stats, plan and recommendation storage

func (f *fakeStore) DoneBookIDsBetween(_ context.Context, userID string, from, to time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lo, hi := calendarDay(from), calendarDay(to)
	var ids []string
	for _, e := range f.entries {
		day := calendarDay(e.AddedAt)
		if e.UserID == userID && e.Status == model.StatusDone && !day.Before(lo) && !day.After(hi) {
			ids = append(ids, e.BookID)
		}
	}
	return ids, nil
}

// FavoriteCounts returns groups in map order, like an unordered GROUP BY.
func (f *fakeStore) FavoriteCounts(_ context.Context, field repository.GroupField, bookIDs []string) ([]model.KeyCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	groups := make(map[string]int)
	for _, id := range bookIDs {
		b, ok := f.books[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if field == repository.GroupByAuthor {
			groups[b.Author]++
		} else {
			groups[b.Genre]++
		}
	}
	var out []model.KeyCount
	for k, c := range groups {
		out = append(out, model.KeyCount{Key: k, Count: c})
	}
	return out, nil
}

func (f *fakeStore) GetPlanTargets(_ context.Context, userID string) (*model.PlanTargets, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[userID]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdatePlanTargets(_ context.Context, userID string, update model.PlanUpdate) (*model.PlanTargets, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[userID]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	if f.planUpdateErr != nil {
		return nil, f.planUpdateErr
	}
	next := update.Apply(*p)
	f.plans[userID] = &next
	cp := next
	return &cp, nil
}

func (f *fakeStore) LibraryBookIDs(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, e := range f.entries {
		if e.UserID == userID {
			ids = append(ids, e.BookID)
		}
	}
	return ids, nil
}

func (f *fakeStore) RecommendBooks(_ context.Context, author, genre string, excludeIDs []string, limit int) ([]model.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []model.BookSummary
	for _, b := range f.books {
		if excluded[b.ID] || (b.Author != author && b.Genre != genre) {
			continue
		}
		out = append(out, b.Summary())
	}
	sortSummaries(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortSummaries(books []model.BookSummary) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].Rating != books[j].Rating {
			return books[i].Rating > books[j].Rating
		}
		return books[i].ID < books[j].ID
	})
}

// Catalog storage

func (f *fakeStore) CreateBook(_ context.Context, book *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *book
	f.books[book.ID] = &cp
	return nil
}

func (f *fakeStore) GetBookByID(_ context.Context, id string) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) TopBooks(_ context.Context, limit int) ([]model.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BookSummary, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b.Summary())
	}
	sortSummaries(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) SearchBooks(_ context.Context, query string, limit int) ([]model.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.BookSummary
	for _, b := range f.books {
		if strings.Contains(strings.ToLower(b.Title+"\x00"+b.Author+"\x00"+b.Genre), q) {
			out = append(out, b.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Library storage

func (f *fakeStore) CreateEntry(_ context.Context, entry *model.LibraryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[entry.BookID]; !ok {
		return repository.ErrBookNotFound
	}
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, userID, entryID string) (*model.LibraryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == entryID && e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (f *fakeStore) UpdateEntry(_ context.Context, entry *model.LibraryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == entry.ID && e.UserID == entry.UserID {
			e.Status = entry.Status
			e.Rating = entry.Rating
			return nil
		}
	}
	return repository.ErrEntryNotFound
}

func (f *fakeStore) DeleteEntry(_ context.Context, userID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == entryID && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrEntryNotFound
}

func (f *fakeStore) shelf(match func(*model.LibraryEntry) bool) []model.ShelfBook {
	out := make([]model.ShelfBook, 0)
	for _, e := range f.entries {
		if !match(e) {
			continue
		}
		b := f.books[e.BookID]
		out = append(out, model.ShelfBook{
			EntryID: e.ID,
			BookID:  b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Genre:   b.Genre,
			Status:  e.Status,
			Rating:  e.Rating,
			AddedAt: e.AddedAt,
		})
	}
	return out
}

func (f *fakeStore) ListShelf(_ context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shelf(func(e *model.LibraryEntry) bool {
		return e.UserID == userID && e.Status == status
	}), nil
}

func (f *fakeStore) RecentShelf(_ context.Context, userID string, limit int) ([]model.ShelfBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.shelf(func(e *model.LibraryEntry) bool { return e.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountByStatus(_ context.Context, userID string) (model.StatusCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c model.StatusCounts
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		switch e.Status {
		case model.StatusDone:
			c.Done++
		case model.StatusInProgress:
			c.InProgress++
		case model.StatusWantToRead:
			c.WantToRead++
		}
	}
	return c, nil
}

// Users and sessions

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	f.plans[user.ID] = &model.PlanTargets{UserID: user.ID}
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, id, username, quote, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if username != "" {
		u.Username = username
	}
	if quote != "" {
		u.Quote = quote
	}
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[s.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetActiveSessionByPrefix(_ context.Context, prefix string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.TokenPrefix == prefix && s.RevokedAt == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (f *fakeStore) RevokeSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (f *fakeStore) UpdateSessionLastUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUsed[id]++
	return nil
}

// Reviews

func (f *fakeStore) CreateReview(_ context.Context, review *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.BookID == review.BookID {
			return repository.ErrReviewExists
		}
	}
	cp := *review
	if u, ok := f.users[review.UserID]; ok {
		cp.Username = u.Username
	}
	f.reviews = append(f.reviews, cp)
	return nil
}

func (f *fakeStore) ListReviewsByBook(_ context.Context, bookID string) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Review, 0)
	for _, r := range f.reviews {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) HasReview(_ context.Context, userID, bookID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == userID && r.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

// fakeViews is an in-memory view and session cache.
type fakeViews struct {
	mu          sync.Mutex
	stats       map[string]*model.RangeStats
	recs        map[string]*model.Recommendations
	top         []model.BookSummary
	books       map[string]*model.Book
	auth        map[string]*model.AuthContext
	invalidated []string
}

func newFakeViews() *fakeViews {
	return &fakeViews{
		stats: make(map[string]*model.RangeStats),
		recs:  make(map[string]*model.Recommendations),
		books: make(map[string]*model.Book),
		auth:  make(map[string]*model.AuthContext),
	}
}

func fakeStatsKey(userID string, kind model.RangeKind, day time.Time) string {
	return userID + "|" + string(kind) + "|" + day.Format("2006-01-02")
}

func (v *fakeViews) GetStats(_ context.Context, userID string, kind model.RangeKind, day time.Time) (*model.RangeStats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.stats[fakeStatsKey(userID, kind, day)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return s, nil
}

func (v *fakeViews) SetStats(_ context.Context, userID string, kind model.RangeKind, day time.Time, stats *model.RangeStats) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats[fakeStatsKey(userID, kind, day)] = stats
	return nil
}

func (v *fakeViews) InvalidateStats(_ context.Context, userID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for k := range v.stats {
		if strings.HasPrefix(k, userID+"|") {
			delete(v.stats, k)
		}
	}
	v.invalidated = append(v.invalidated, "stats:"+userID)
	return nil
}

func (v *fakeViews) InvalidateUser(ctx context.Context, userID string) error {
	_ = v.InvalidateStats(ctx, userID)
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.recs, userID)
	v.invalidated = append(v.invalidated, "user:"+userID)
	return nil
}

func (v *fakeViews) GetRecommendations(_ context.Context, userID string) (*model.Recommendations, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.recs[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return r, nil
}

func (v *fakeViews) SetRecommendations(_ context.Context, userID string, recs *model.Recommendations) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recs[userID] = recs
	return nil
}

func (v *fakeViews) GetTopBooks(context.Context) ([]model.BookSummary, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.top == nil {
		return nil, cache.ErrCacheMiss
	}
	return v.top, nil
}

func (v *fakeViews) SetTopBooks(_ context.Context, books []model.BookSummary) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = books
	return nil
}

func (v *fakeViews) InvalidateTopBooks(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = nil
	return nil
}

func (v *fakeViews) InvalidateRecommendations(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recs = make(map[string]*model.Recommendations)
	v.invalidated = append(v.invalidated, "recommendations")
	return nil
}

func (v *fakeViews) GetBook(_ context.Context, id string) (*model.Book, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.books[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return b, nil
}

func (v *fakeViews) SetBook(_ context.Context, book *model.Book) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.books[book.ID] = book
	return nil
}

func (v *fakeViews) GetAuthContext(_ context.Context, key string) (*model.AuthContext, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.auth[key], nil
}

func (v *fakeViews) SetAuthContext(_ context.Context, key string, ac *model.AuthContext) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.auth[key] = ac
	return nil
}

func (v *fakeViews) DeleteAuthContext(_ context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.auth, key)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []model.LibraryEvent
}

func (p *fakePublisher) PublishAsync(event model.LibraryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) kinds() []model.LibraryEventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.LibraryEventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}
