package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB is an in-memory document store. Transactions are serialized and apply
// all-or-nothing. conflicts makes the next transactions run fn once against a
// discarded snapshot before the real attempt, the way a driver retries a write conflict.
type memDB struct {
	mu          sync.Mutex
	users       map[string]*models.User
	entries     map[primitive.ObjectID]*models.Entry
	collections map[primitive.ObjectID]*models.Collection
	awards      []models.PointsAward

	conflicts   int
	attempts    int
	failFriend  string
	writesCount int
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[string]*models.User{},
		entries:     map[primitive.ObjectID]*models.Entry{},
		collections: map[primitive.ObjectID]*models.Collection{},
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Friends != nil {
		c.Friends = make(map[string]models.FriendSummary, len(u.Friends))
		for k, v := range u.Friends {
			c.Friends[k] = v
		}
	}
	return &c
}

func cloneEntry(e *models.Entry) *models.Entry {
	c := *e
	return &c
}

type memTx struct {
	users   map[string]*models.User
	entries map[primitive.ObjectID]*models.Entry
	awards  []models.PointsAward
	db      *memDB
	writes  int
}

func (db *memDB) snapshot() *memTx {
	tx := &memTx{
		users:   make(map[string]*models.User, len(db.users)),
		entries: make(map[primitive.ObjectID]*models.Entry, len(db.entries)),
		db:      db,
	}
	for k, v := range db.users {
		tx.users[k] = cloneUser(v)
	}
	for k, v := range db.entries {
		tx.entries[k] = cloneEntry(v)
	}
	return tx
}

func (db *memDB) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx DocTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for db.conflicts > 0 {
		db.conflicts--
		db.attempts++
		_ = fn(ctx, db.snapshot())
	}

	db.attempts++
	tx := db.snapshot()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	db.users = tx.users
	db.entries = tx.entries
	db.awards = append(db.awards, tx.awards...)
	db.writesCount += tx.writes
	return nil
}

func (tx *memTx) GetUser(_ context.Context, userID string) (*models.User, error) {
	u, ok := tx.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (tx *memTx) GetEntry(_ context.Context, id primitive.ObjectID) (*models.Entry, error) {
	e, ok := tx.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEntry(e), nil
}

func (tx *memTx) SetPoints(_ context.Context, userID string, points int64) error {
	u, ok := tx.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Points = points
	tx.writes++
	return nil
}

func (tx *memTx) MarkEntryAwarded(_ context.Context, id primitive.ObjectID) error {
	e, ok := tx.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.PointsAwarded = true
	tx.writes++
	return nil
}

func (tx *memTx) InsertAward(_ context.Context, award models.PointsAward) error {
	tx.awards = append(tx.awards, award)
	tx.writes++
	return nil
}

func (tx *memTx) PutFriend(_ context.Context, userID string, friend models.FriendSummary) error {
	if tx.db.failFriend == userID {
		return errors.New("write failed")
	}
	u, ok := tx.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if u.Friends == nil {
		u.Friends = map[string]models.FriendSummary{}
	}
	u.Friends[friend.ID] = friend
	tx.writes++
	return nil
}

// UserStore

func (db *memDB) Create(_ context.Context, u *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[u.ID]; ok {
		return errors.New("duplicate key")
	}
	for _, other := range db.users {
		if u.FriendCode != "" && other.FriendCode == u.FriendCode {
			return ErrFriendCodeTaken
		}
	}
	db.users[u.ID] = cloneUser(u)
	return nil
}

func (db *memDB) GetByID(_ context.Context, userID string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (db *memDB) GetByFriendCode(_ context.Context, code string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.FriendCode == code {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (db *memDB) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := db.GetByFriendCode(ctx, code)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (db *memDB) Update(_ context.Context, userID string, patch UserPatch) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Mood != nil {
		u.Mood = *patch.Mood
	}
	if patch.Locale != nil {
		u.Locale = *patch.Locale
	}
	if patch.Image != nil {
		u.Image = *patch.Image
	}
	return cloneUser(u), nil
}

func (db *memDB) TopByPoints(_ context.Context, limit int) ([]*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*models.User, 0, len(db.users))
	for _, u := range db.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (db *memDB) EachUser(ctx context.Context, fn func(u *models.User) error) error {
	db.mu.Lock()
	ids := make([]string, 0, len(db.users))
	for id := range db.users {
		ids = append(ids, id)
	}
	db.mu.Unlock()
	sort.Strings(ids)
	for _, id := range ids {
		u, err := db.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

// memEntries adapts memDB to EntryStore.
type memEntries struct{ db *memDB }

func (m memEntries) Create(_ context.Context, e *models.Entry) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	m.db.entries[e.ID] = cloneEntry(e)
	return nil
}

func (m memEntries) Get(_ context.Context, userID string, id primitive.ObjectID) (*models.Entry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.entries[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneEntry(e), nil
}

func (m memEntries) Update(_ context.Context, userID string, id primitive.ObjectID, patch EntryPatch) (*models.Entry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.entries[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.ClearCollection {
		e.CollectionID = nil
	} else if patch.CollectionID != nil {
		c := *patch.CollectionID
		e.CollectionID = &c
	}
	e.UpdatedAt = time.Now()
	return cloneEntry(e), nil
}

func (m memEntries) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.entries[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.db.entries, id)
	return nil
}

func (m memEntries) list(pred func(e *models.Entry) bool) []models.Entry {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.Entry{}
	for _, e := range m.db.entries {
		if pred(e) {
			out = append(out, *cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return entryNewer(out[i], out[j]) })
	return out
}

func (m memEntries) ListRange(_ context.Context, userID string, start, end time.Time) ([]models.Entry, error) {
	return m.list(func(e *models.Entry) bool {
		return e.UserID == userID && !e.CreatedAt.Before(start) && e.CreatedAt.Before(end)
	}), nil
}

func (m memEntries) ListByCollection(_ context.Context, userID, collectionID string) ([]models.Entry, error) {
	return m.list(func(e *models.Entry) bool {
		return e.UserID == userID && e.CollectionID != nil && *e.CollectionID == collectionID
	}), nil
}

func (m memEntries) SearchTitle(_ context.Context, userID, query string, limit int) ([]models.Entry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Entry{}, nil
	}
	out := m.list(func(e *models.Entry) bool {
		return e.UserID == userID && strings.Contains(strings.ToLower(e.Title), q)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memEntries) CountByUser(_ context.Context, userID string) (int64, error) {
	return int64(len(m.list(func(e *models.Entry) bool { return e.UserID == userID }))), nil
}

func (m memEntries) ClearCollection(_ context.Context, userID, collectionID string) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, e := range m.db.entries {
		if e.UserID == userID && e.CollectionID != nil && *e.CollectionID == collectionID {
			e.CollectionID = nil
			n++
		}
	}
	return n, nil
}

// memCollections adapts memDB to CollectionStore.
type memCollections struct{ db *memDB }

func (m memCollections) Create(_ context.Context, c *models.Collection) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	m.db.collections[c.ID] = &cp
	return nil
}

func (m memCollections) Get(_ context.Context, userID string, id primitive.ObjectID) (*models.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.collections[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCollections) List(_ context.Context, userID string) ([]models.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.Collection{}
	for _, c := range m.db.collections {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memCollections) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.collections[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(m.db.collections, id)
	return nil
}

func strPtr(s string) *string { return &s }
