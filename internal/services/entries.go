package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const searchLimit = 50

// Live-update topics a client can subscribe to.
const (
	TopicEntries     = "entries"
	TopicCollections = "collections"
)

// Notifier tells subscribers of userID that topic changed. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, topic string)
}

type EntryInput struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	ChallengeID  *string `json:"challenge_id"`
	CollectionID *string `json:"collection_id"`
}

// EntryUpdate carries the editable fields. An empty CollectionID moves the entry back to the timeline.
type EntryUpdate struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	CollectionID *string `json:"collection_id"`
}

type CreatedEntry struct {
	Entry  *models.Entry `json:"entry"`
	Points AwardResult   `json:"points"`
}

// MonthView is the home timeline for one month.
type MonthView struct {
	Entries    []models.Entry `json:"entries"`
	MarkedDays []int          `json:"marked_days"`
	DaysAway   int            `json:"days_away"`
}

type EntryService struct {
	entries     EntryStore
	collections CollectionStore
	ledger      *PointsLedger
	leaderboard *Leaderboard
	notifier    Notifier
	now         func() time.Time
}

func NewEntryService(entries EntryStore, collections CollectionStore, ledger *PointsLedger, leaderboard *Leaderboard, notifier Notifier) *EntryService {
	return &EntryService{
		entries:     entries,
		collections: collections,
		ledger:      ledger,
		leaderboard: leaderboard,
		notifier:    notifier,
		now:         time.Now,
	}
}

func titleRequired() error {
	return &utils.ValidationError{Field: "title", Message: "Title is required", Key: i18n.MsgTitleRequired}
}

// Create stores a new entry and, when it answers a challenge, awards the challenge points.
// A failed award is logged; the entry stays created.
func (s *EntryService) Create(ctx context.Context, userID string, in EntryInput) (*CreatedEntry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, titleRequired()
	}
	if len([]rune(title)) > utils.MaxTitleLength {
		return nil, &utils.ValidationError{Field: "title", Message: "Title must be at most 200 characters"}
	}

	collectionID, err := s.ownedCollection(ctx, userID, in.CollectionID)
	if err != nil {
		return nil, err
	}

	var challengeID *string
	if in.ChallengeID != nil && strings.TrimSpace(*in.ChallengeID) != "" {
		id := strings.TrimSpace(*in.ChallengeID)
		challengeID = &id
	}

	now := s.now()
	entry := &models.Entry{
		ID:           primitive.NewObjectID(),
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       userID,
		Title:        title,
		Content:      in.Content,
		ChallengeID:  challengeID,
		CollectionID: collectionID,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	result := &CreatedEntry{Entry: entry}
	if s.ledger != nil && challengeID != nil {
		award, err := s.ledger.AwardForEntry(ctx, userID, entry)
		if err != nil {
			logger.WithUser(userID).WithError(err).WithField("entry_id", entry.ID.Hex()).Error("entries: points award failed")
		} else {
			result.Points = award
			if award.Awarded > 0 {
				entry.PointsAwarded = true
				if s.leaderboard != nil {
					s.leaderboard.Invalidate(ctx)
				}
			}
		}
	}

	s.notify(ctx, userID, TopicEntries)
	return result, nil
}

// Update edits an entry. It never awards points.
func (s *EntryService) Update(ctx context.Context, userID, id string, in EntryUpdate) (*models.Entry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var patch EntryPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, titleRequired()
		}
		patch.Title = &title
	}
	patch.Content = in.Content
	if in.CollectionID != nil {
		if strings.TrimSpace(*in.CollectionID) == "" {
			patch.ClearCollection = true
		} else {
			collectionID, err := s.ownedCollection(ctx, userID, in.CollectionID)
			if err != nil {
				return nil, err
			}
			patch.CollectionID = collectionID
		}
	}

	entry, err := s.entries.Update(ctx, userID, oid, patch)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, userID, TopicEntries)
	return entry, nil
}

func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if err := s.entries.Delete(ctx, userID, oid); err != nil {
		return err
	}
	s.notify(ctx, userID, TopicEntries)
	return nil
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.entries.Get(ctx, userID, oid)
}

// Month returns the uncategorized entries of the month, the days that have any, and
// how many days away the month is when it hasn't started yet.
func (s *EntryService) Month(ctx context.Context, userID string, q MonthQuery) (*MonthView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start, end := q.Range()
	all, err := s.entries.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	view := &MonthView{
		Entries:    FilterEntries(all, q),
		MarkedDays: MarkedDays(all, q),
	}
	if days := DaysUntilMonth(s.now(), q); days > 0 {
		view.DaysAway = days
	}
	return view, nil
}

func (s *EntryService) Search(ctx context.Context, userID, query string) ([]models.Entry, error) {
	return s.entries.SearchTitle(ctx, userID, query, searchLimit)
}

func (s *EntryService) Count(ctx context.Context, userID string) (int64, error) {
	return s.entries.CountByUser(ctx, userID)
}

// ownedCollection resolves an optional collection reference, requiring it to belong to userID.
func (s *EntryService) ownedCollection(ctx context.Context, userID string, raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(*raw))
	if err != nil {
		return nil, ErrCollectionNotFound
	}
	if _, err := s.collections.Get(ctx, userID, oid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	hex := oid.Hex()
	return &hex, nil
}

func (s *EntryService) notify(ctx context.Context, userID, topic string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, topic)
}

type CollectionInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CollectionDetail is a collection with its entries, newest first.
type CollectionDetail struct {
	Collection *models.Collection `json:"collection"`
	Entries    []models.Entry     `json:"entries"`
}

type CollectionService struct {
	collections CollectionStore
	entries     EntryStore
	notifier    Notifier
	now         func() time.Time
}

func NewCollectionService(collections CollectionStore, entries EntryStore, notifier Notifier) *CollectionService {
	return &CollectionService{collections: collections, entries: entries, notifier: notifier, now: time.Now}
}

func (s *CollectionService) Create(ctx context.Context, userID string, in CollectionInput) (*models.Collection, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &utils.ValidationError{Field: "name", Message: "Collection name is required", Key: i18n.MsgCollectionRequired}
	}
	c := &models.Collection{
		ID:        primitive.NewObjectID(),
		CreatedAt: s.now(),
		UserID:    userID,
		Name:      name,
		Icon:      strings.TrimSpace(in.Icon),
		Color:     strings.TrimSpace(in.Color),
	}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, TopicCollections)
	return c, nil
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]models.Collection, error) {
	return s.collections.List(ctx, userID)
}

func (s *CollectionService) Get(ctx context.Context, userID, id string) (*CollectionDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCollectionNotFound
	}
	c, err := s.collections.Get(ctx, userID, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByCollection(ctx, userID, oid.Hex())
	if err != nil {
		return nil, err
	}
	return &CollectionDetail{Collection: c, Entries: entries}, nil
}

// Delete removes the collection. Its entries are kept and moved back to the timeline before
// and again after the collection document goes.
func (s *CollectionService) Delete(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCollectionNotFound
	}
	if _, err := s.collections.Get(ctx, userID, oid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}

	cleared, err := s.entries.ClearCollection(ctx, userID, oid.Hex())
	if err != nil {
		return err
	}
	if err := s.collections.Delete(ctx, userID, oid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}
	// Entries filed into the collection while it was being deleted.
	late, err := s.entries.ClearCollection(ctx, userID, oid.Hex())
	if err != nil {
		return err
	}
	cleared += late

	logger.WithUser(userID).WithField("collection_id", oid.Hex()).WithField("entries_cleared", cleared).Info("collections: deleted")
	s.notify(ctx, userID, TopicCollections)
	s.notify(ctx, userID, TopicEntries)
	return nil
}

func (s *CollectionService) notify(ctx context.Context, userID, topic string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, topic)
}
