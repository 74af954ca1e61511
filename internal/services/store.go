package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPatch lists profile fields to overwrite; nil fields are left alone.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Mood      *string
	Locale    *string
	Image     *string
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByFriendCode(ctx context.Context, code string) (*models.User, error)
	FriendCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, userID string, patch UserPatch) (*models.User, error)
	TopByPoints(ctx context.Context, limit int) ([]*models.User, error)
	EachUser(ctx context.Context, fn func(u *models.User) error) error
}

// EntryPatch lists entry fields to overwrite. ClearCollection wins over CollectionID.
type EntryPatch struct {
	Title           *string
	Content         *string
	CollectionID    *string
	ClearCollection bool
}

// EntryStore scopes every call to the owning user; another user's entry reads as ErrNotFound.
type EntryStore interface {
	Create(ctx context.Context, e *models.Entry) error
	Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.Entry, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, patch EntryPatch) (*models.Entry, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]models.Entry, error)
	ListByCollection(ctx context.Context, userID, collectionID string) ([]models.Entry, error)
	SearchTitle(ctx context.Context, userID, query string, limit int) ([]models.Entry, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	ClearCollection(ctx context.Context, userID, collectionID string) (int64, error)
}

type CollectionStore interface {
	Create(ctx context.Context, c *models.Collection) error
	Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.Collection, error)
	List(ctx context.Context, userID string) ([]models.Collection, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}
