package services

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/database"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// DocTx is the view of the document store available inside a transaction.
// Reads see the transaction's snapshot; writes commit together or not at all.
type DocTx interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetEntry(ctx context.Context, entryID primitive.ObjectID) (*models.Entry, error)
	SetPoints(ctx context.Context, userID string, points int64) error
	MarkEntryAwarded(ctx context.Context, entryID primitive.ObjectID) error
	InsertAward(ctx context.Context, award models.PointsAward) error
	PutFriend(ctx context.Context, userID string, friend models.FriendSummary) error
}

// Transactor runs fn inside a read-then-write transaction. fn may be invoked more than once
// when the store retries a conflicting commit, so it must not keep side effects outside tx.
type Transactor interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx DocTx) error) error
}

// MongoTransactor runs transactions on a replica set through driver sessions.
type MongoTransactor struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoTransactor(client *mongo.Client, db *mongo.Database) *MongoTransactor {
	return &MongoTransactor{client: client, db: db}
}

func (t *MongoTransactor) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx DocTx) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoDocTx{db: t.db})
	}, txnOpts)
	return err
}

type mongoDocTx struct {
	db *mongo.Database
}

func (m *mongoDocTx) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := m.db.Collection(database.UsersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *mongoDocTx) GetEntry(ctx context.Context, entryID primitive.ObjectID) (*models.Entry, error) {
	var e models.Entry
	err := m.db.Collection(database.EntriesCollection).FindOne(ctx, bson.M{"_id": entryID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (m *mongoDocTx) SetPoints(ctx context.Context, userID string, points int64) error {
	_, err := m.db.Collection(database.UsersCollection).UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"points": points, "updated_at": time.Now()},
	})
	return err
}

func (m *mongoDocTx) MarkEntryAwarded(ctx context.Context, entryID primitive.ObjectID) error {
	_, err := m.db.Collection(database.EntriesCollection).UpdateByID(ctx, entryID, bson.M{
		"$set": bson.M{"points_awarded": true},
	})
	return err
}

func (m *mongoDocTx) InsertAward(ctx context.Context, award models.PointsAward) error {
	_, err := m.db.Collection(database.PointsAwardCollection).InsertOne(ctx, award)
	return err
}

func (m *mongoDocTx) PutFriend(ctx context.Context, userID string, friend models.FriendSummary) error {
	res, err := m.db.Collection(database.UsersCollection).UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"friends." + friend.ID: friend, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
