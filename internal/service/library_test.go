package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

func newLibraryFixture(t *testing.T) (*fakeStore, *fakeViews, *fakePublisher, *metrics.InMemoryRecorder, *LibraryService) {
	t.Helper()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	store.addBook("b", "Emma", "Austen", "Romance", 4.0)
	views := newFakeViews()
	pub := &fakePublisher{}
	recorder := metrics.NewInMemory()
	svc := NewLibraryService(store, pub, views, nil, recorder)
	return store, views, pub, recorder, svc
}

func TestLibrary_AddUpdateDelete(t *testing.T) {
	t.Parallel()
	_, views, pub, recorder, svc := newLibraryFixture(t)
	ctx := context.Background()
	added := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return added }

	entry, err := svc.AddEntry(ctx, "u", AddEntryInput{BookID: "a", Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, added, entry.AddedAt)

	done := model.StatusDone
	updated, err := svc.UpdateEntry(ctx, "u", entry.ID, UpdateEntryInput{Status: &done, Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Equal(t, 5, updated.Rating)

	shelf, err := svc.ListShelf(ctx, "u", model.StatusDone)
	require.NoError(t, err)
	require.Len(t, shelf, 1)
	assert.Equal(t, 5, shelf[0].Rating, "shelf shows the reader's own rating")

	require.NoError(t, svc.DeleteEntry(ctx, "u", entry.ID))
	assert.ErrorIs(t, svc.DeleteEntry(ctx, "u", entry.ID), ErrEntryNotFound)

	assert.Equal(t, []model.LibraryEventKind{
		model.EventEntryAdded,
		model.EventEntryUpdated,
		model.EventEntryRemoved,
	}, pub.kinds())
	assert.Len(t, views.invalidated, 6) // stats and user per mutation
	assert.Equal(t, uint64(1), recorder.Snapshot().LibraryChanges[string(model.EventEntryRemoved)])
}

func TestLibrary_DuplicatesAllowed(t *testing.T) {
	t.Parallel()
	_, _, _, _, svc := newLibraryFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.AddEntry(ctx, "u", AddEntryInput{BookID: "a", Status: model.StatusDone})
		require.NoError(t, err)
	}
	shelf, err := svc.ListShelf(ctx, "u", model.StatusDone)
	require.NoError(t, err)
	assert.Len(t, shelf, 2)
}

func TestLibrary_Validation(t *testing.T) {
	t.Parallel()
	_, _, pub, _, svc := newLibraryFixture(t)
	ctx := context.Background()

	_, err := svc.AddEntry(ctx, "u", AddEntryInput{BookID: "a", Status: "finished"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddEntry(ctx, "u", AddEntryInput{BookID: "a", Status: model.StatusDone, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddEntry(ctx, "u", AddEntryInput{BookID: "missing", Status: model.StatusDone})
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.UpdateEntry(ctx, "u", "nope", UpdateEntryInput{Rating: intPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateEntry(ctx, "u", "nope", UpdateEntryInput{Rating: intPtr(3)})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	assert.Empty(t, pub.kinds())
}

func TestLibrary_EntriesArePerUser(t *testing.T) {
	t.Parallel()
	_, _, _, _, svc := newLibraryFixture(t)
	ctx := context.Background()

	entry, err := svc.AddEntry(ctx, "owner", AddEntryInput{BookID: "a", Status: model.StatusDone})
	require.NoError(t, err)

	_, err = svc.UpdateEntry(ctx, "intruder", entry.ID, UpdateEntryInput{Rating: intPtr(1)})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, "intruder", entry.ID), ErrEntryNotFound)
}

func TestLibrary_RecentNewestFirst(t *testing.T) {
	t.Parallel()
	_, _, _, _, svc := newLibraryFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)

	for i, id := range []string{"a", "b", "a", "b"} {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		_, err := svc.AddEntry(ctx, "u", AddEntryInput{BookID: id, Status: model.StatusWantToRead})
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, "u")
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, base.Add(3*time.Hour), recent[0].AddedAt)
	assert.Equal(t, base.Add(time.Hour), recent[2].AddedAt)
}
