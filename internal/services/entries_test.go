package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingNotifier) Notify(_ context.Context, userID, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, userID+":"+topic)
}

type entryFixture struct {
	db          *memDB
	notifier    *recordingNotifier
	entries     *EntryService
	collections *CollectionService
}

func newEntryFixture(t *testing.T) *entryFixture {
	t.Helper()
	db := newMemDB()
	db.users["u1"] = &models.User{ID: "u1"}
	db.users["u2"] = &models.User{ID: "u2"}
	catalog, err := LoadChallengeCatalog("")
	require.NoError(t, err)

	n := &recordingNotifier{}
	ledger := NewPointsLedger(db, catalog)
	lb := NewLeaderboard(db, NewCacheService(nil), 25, 0)
	return &entryFixture{
		db:          db,
		notifier:    n,
		entries:     NewEntryService(memEntries{db}, memCollections{db}, ledger, lb, n),
		collections: NewCollectionService(memCollections{db}, memEntries{db}, n),
	}
}

func TestCreateEntryRequiresTitle(t *testing.T) {
	f := newEntryFixture(t)

	_, err := f.entries.Create(context.Background(), "u1", EntryInput{Title: "   ", Content: "body"})

	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, i18n.MsgTitleRequired, ve.Key)
	assert.Empty(t, f.db.entries)
	assert.Empty(t, f.notifier.topics)
}

func TestCreateChallengeEntryAwardsOnce(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	created, err := f.entries.Create(ctx, "u1", EntryInput{Title: " Pancakes ", ChallengeID: strPtr("2")})
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", created.Entry.Title)
	assert.Equal(t, AwardResult{Awarded: 10, Total: 10}, created.Points)
	assert.Equal(t, []string{"u1:entries"}, f.notifier.topics)

	_, err = f.entries.Update(ctx, "u1", created.Entry.ID.Hex(), EntryUpdate{Title: strPtr("Crepes")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.db.users["u1"].Points)
}

func TestCreateEntryUnknownChallengeStillSaves(t *testing.T) {
	f := newEntryFixture(t)

	created, err := f.entries.Create(context.Background(), "u1", EntryInput{Title: "x", ChallengeID: strPtr("nope")})

	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Points.Awarded)
	assert.Len(t, f.db.entries, 1)
}

func TestCreateEntryRejectsForeignCollection(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	theirs, err := f.collections.Create(ctx, "u2", CollectionInput{Name: "Recipes"})
	require.NoError(t, err)

	_, err = f.entries.Create(ctx, "u1", EntryInput{Title: "x", CollectionID: strPtr(theirs.ID.Hex())})
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	_, err = f.entries.Create(ctx, "u1", EntryInput{Title: "x", CollectionID: strPtr("not-hex")})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestUpdateEntryMovesBetweenCollectionAndTimeline(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	col, err := f.collections.Create(ctx, "u1", CollectionInput{Name: "Travel"})
	require.NoError(t, err)
	created, err := f.entries.Create(ctx, "u1", EntryInput{Title: "Lisbon"})
	require.NoError(t, err)
	id := created.Entry.ID.Hex()

	moved, err := f.entries.Update(ctx, "u1", id, EntryUpdate{CollectionID: strPtr(col.ID.Hex())})
	require.NoError(t, err)
	require.NotNil(t, moved.CollectionID)
	assert.Equal(t, col.ID.Hex(), *moved.CollectionID)

	back, err := f.entries.Update(ctx, "u1", id, EntryUpdate{CollectionID: strPtr("")})
	require.NoError(t, err)
	assert.True(t, back.Uncategorized())

	_, err = f.entries.Update(ctx, "u1", id, EntryUpdate{Title: strPtr("")})
	var ve *utils.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestEntryOwnership(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	created, err := f.entries.Create(ctx, "u1", EntryInput{Title: "mine"})
	require.NoError(t, err)
	id := created.Entry.ID.Hex()

	_, err = f.entries.Get(ctx, "u2", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.entries.Delete(ctx, "u2", id), ErrNotFound)
	_, err = f.entries.Get(ctx, "u1", "garbage")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.entries.Delete(ctx, "u1", id))
	_, err = f.entries.Get(ctx, "u1", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMonthView(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	clock := time.Date(2024, time.April, 3, 10, 0, 0, 0, time.UTC)
	f.entries.now = func() time.Time { return clock }
	_, err := f.entries.Create(ctx, "u1", EntryInput{Title: "a"})
	require.NoError(t, err)
	clock = time.Date(2024, time.April, 9, 10, 0, 0, 0, time.UTC)
	_, err = f.entries.Create(ctx, "u1", EntryInput{Title: "b"})
	require.NoError(t, err)

	view, err := f.entries.Month(ctx, "u1", MonthQuery{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, titles(view.Entries))
	assert.Equal(t, []int{3, 9}, view.MarkedDays)
	assert.Equal(t, 0, view.DaysAway)

	future, err := f.entries.Month(ctx, "u1", MonthQuery{Month: 4, Year: 2024})
	require.NoError(t, err)
	assert.Empty(t, future.Entries)
	assert.Equal(t, 22, future.DaysAway)

	_, err = f.entries.Month(ctx, "u1", MonthQuery{Month: 12, Year: 2024})
	assert.Error(t, err)
}

func TestSearchEntries(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	for _, title := range []string{"Gym plan", "Weekly GYM", "Recipes"} {
		_, err := f.entries.Create(ctx, "u1", EntryInput{Title: title})
		require.NoError(t, err)
	}
	_, err := f.entries.Create(ctx, "u2", EntryInput{Title: "gym too"})
	require.NoError(t, err)

	got, err := f.entries.Search(ctx, "u1", "gym")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.entries.Search(ctx, "u1", "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteCollectionClearsEntryReferences(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	col, err := f.collections.Create(ctx, "u1", CollectionInput{Name: "Recipes", Icon: "restaurant", Color: "#4CAF50"})
	require.NoError(t, err)
	for _, title := range []string{"soup", "bread"} {
		_, err := f.entries.Create(ctx, "u1", EntryInput{Title: title, CollectionID: strPtr(col.ID.Hex())})
		require.NoError(t, err)
	}

	detail, err := f.collections.Get(ctx, "u1", col.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, detail.Entries, 2)

	require.NoError(t, f.collections.Delete(ctx, "u1", col.ID.Hex()))

	assert.Len(t, f.db.entries, 2)
	for _, e := range f.db.entries {
		assert.True(t, e.Uncategorized())
	}
	_, err = f.collections.Get(ctx, "u1", col.ID.Hex())
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.ErrorIs(t, f.collections.Delete(ctx, "u1", col.ID.Hex()), ErrCollectionNotFound)
}

// lateFiling files one more entry into the collection right after the first clear.
type lateFiling struct {
	memEntries
	filed bool
}

func (l *lateFiling) ClearCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	n, err := l.memEntries.ClearCollection(ctx, userID, collectionID)
	if !l.filed {
		l.filed = true
		late := &models.Entry{ID: primitive.NewObjectID(), UserID: userID, Title: "late", CollectionID: strPtr(collectionID), CreatedAt: time.Now()}
		if err := l.memEntries.Create(ctx, late); err != nil {
			return 0, err
		}
	}
	return n, err
}

func TestDeleteCollectionClearsEntriesFiledDuringDelete(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()
	collections := NewCollectionService(memCollections{f.db}, &lateFiling{memEntries: memEntries{f.db}}, f.notifier)

	col, err := collections.Create(ctx, "u1", CollectionInput{Name: "Recipes"})
	require.NoError(t, err)

	require.NoError(t, collections.Delete(ctx, "u1", col.ID.Hex()))

	require.Len(t, f.db.entries, 1)
	for _, e := range f.db.entries {
		assert.Equal(t, "late", e.Title)
		assert.True(t, e.Uncategorized())
	}
}

func TestCreateCollectionRequiresName(t *testing.T) {
	f := newEntryFixture(t)

	_, err := f.collections.Create(context.Background(), "u1", CollectionInput{Name: ""})

	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, i18n.MsgCollectionRequired, ve.Key)
}
