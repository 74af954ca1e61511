package database

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the document database.
const (
	UsersCollection       = "users"
	EntriesCollection     = "entries"
	CollectionsCollection = "collections"
	PointsAwardCollection = "points_awards"
)

var Client *mongo.Client
var DB *mongo.Database

// Connect opens the MongoDB client. Transactions require the deployment to be a replica set.
func Connect(mongoURI string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseName(mongoURI))

	logger.Log.WithField("database", DB.Name()).Info("✅ Connected to MongoDB")
	return nil
}

// databaseName extracts the path segment of the URI, defaulting to "inkwell".
func databaseName(mongoURI string) string {
	u, err := url.Parse(mongoURI)
	if err != nil {
		return "inkwell"
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return "inkwell"
	}
	return name
}

// EnsureIndexes creates the indexes the queries rely on. Called once on startup.
func EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "friend_code", Value: 1}},
				Options: options.Index().SetName("idx_friend_code").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_points_desc"),
			},
		},
		EntriesCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_user_created"),
			},
			{
				Keys:    bson.D{{Key: "collection_id", Value: 1}},
				Options: options.Index().SetName("idx_collection"),
			},
		},
		CollectionsCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_user_created"),
			},
		},
		PointsAwardCollection: {
			{
				Keys:    bson.D{{Key: "entry_id", Value: 1}},
				Options: options.Index().SetName("idx_entry").SetUnique(true),
			},
		},
	}

	for name, models := range indexes {
		if _, err := DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func Disconnect() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
