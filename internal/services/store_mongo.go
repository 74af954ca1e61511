package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/database"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore reads and writes the "users" collection.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(database.UsersCollection)}
}

// Create inserts the profile. A clash on the unique friend code index comes back as
// ErrFriendCodeTaken so signup can pick another code.
func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.col.InsertOne(ctx, u)
	if isFriendCodeConflict(err) {
		return ErrFriendCodeTaken
	}
	return err
}

func isFriendCodeConflict(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "friend_code")
}

func (s *MongoUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": userID})
}

func (s *MongoUserStore) GetByFriendCode(ctx context.Context, code string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"friend_code": code})
}

func (s *MongoUserStore) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"friend_code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoUserStore) Update(ctx context.Context, userID string, patch UserPatch) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Mood != nil {
		set["mood"] = *patch.Mood
	}
	if patch.Locale != nil {
		set["locale"] = *patch.Locale
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TopByPoints orders by points descending with _id as a stable tiebreak.
func (s *MongoUserStore) TopByPoints(ctx context.Context, limit int) ([]*models.User, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"friends": 0})

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) EachUser(ctx context.Context, fn func(u *models.User) error) error {
	cursor, err := s.col.Find(ctx, bson.M{"friends": bson.M{"$exists": true}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return err
		}
		if err := fn(&u); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// MongoEntryStore reads and writes the "entries" collection.
type MongoEntryStore struct {
	col *mongo.Collection
}

func NewMongoEntryStore(db *mongo.Database) *MongoEntryStore {
	return &MongoEntryStore{col: db.Collection(database.EntriesCollection)}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoEntryStore) Create(ctx context.Context, e *models.Entry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, e)
	return err
}

func (s *MongoEntryStore) Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.Entry, error) {
	var e models.Entry
	err := s.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *MongoEntryStore) Update(ctx context.Context, userID string, id primitive.ObjectID, patch EntryPatch) (*models.Entry, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.ClearCollection {
		set["collection_id"] = nil
	} else if patch.CollectionID != nil {
		set["collection_id"] = *patch.CollectionID
	}

	var e models.Entry
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *MongoEntryStore) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRange returns the user's entries created in [start, end), newest first.
func (s *MongoEntryStore) ListRange(ctx context.Context, userID string, start, end time.Time) ([]models.Entry, error) {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": start, "$lt": end},
	}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (s *MongoEntryStore) ListByCollection(ctx context.Context, userID, collectionID string) ([]models.Entry, error) {
	filter := bson.M{"user_id": userID, "collection_id": collectionID}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (s *MongoEntryStore) SearchTitle(ctx context.Context, userID, query string, limit int) ([]models.Entry, error) {
	filter := titleSearchFilter(userID, query)
	if filter == nil {
		return []models.Entry{}, nil
	}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

func (s *MongoEntryStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (s *MongoEntryStore) ClearCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "collection_id": collectionID},
		bson.M{"$set": bson.M{"collection_id": nil, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoEntryStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Entry, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// titleSearchFilter matches titles containing query, case-insensitively. A blank query matches nothing.
func titleSearchFilter(userID, query string) bson.M {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return bson.M{
		"user_id": userID,
		"title":   primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
}

// MongoCollectionStore reads and writes the "collections" collection.
type MongoCollectionStore struct {
	col *mongo.Collection
}

func NewMongoCollectionStore(db *mongo.Database) *MongoCollectionStore {
	return &MongoCollectionStore{col: db.Collection(database.CollectionsCollection)}
}

func (s *MongoCollectionStore) Create(ctx context.Context, c *models.Collection) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *MongoCollectionStore) Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.Collection, error) {
	var c models.Collection
	err := s.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCollectionStore) List(ctx context.Context, userID string) ([]models.Collection, error) {
	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	collections := []models.Collection{}
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *MongoCollectionStore) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
