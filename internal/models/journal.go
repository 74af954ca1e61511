package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is a single journal writing. CollectionID nil means it shows on the home timeline.
type Entry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	ChallengeID   *string            `bson:"challenge_id" json:"challenge_id"`
	CollectionID  *string            `bson:"collection_id" json:"collection_id"`
	PointsAwarded bool               `bson:"points_awarded" json:"-"`
}

// Uncategorized reports whether the entry belongs to no collection.
func (e *Entry) Uncategorized() bool {
	return e.CollectionID == nil || *e.CollectionID == ""
}

// PointsAward is the audit record written alongside every committed points increment.
type PointsAward struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	EntryID     string             `bson:"entry_id" json:"entry_id"`
	ChallengeID string             `bson:"challenge_id" json:"challenge_id"`
	Points      int64              `bson:"points" json:"points"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
