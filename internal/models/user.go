package models

import (
	"sort"
	"time"
)

// User is the profile document stored in the "users" collection.
// The _id is the account uuid so it can be joined with the Postgres accounts row.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	FirstName  string `bson:"first_name" json:"first_name"`
	LastName   string `bson:"last_name" json:"last_name"`
	Email      string `bson:"email" json:"email"`
	FriendCode string `bson:"friend_code" json:"friend_code"`
	Points     int64  `bson:"points" json:"points"`
	Mood       string `bson:"mood,omitempty" json:"mood,omitempty"`
	Locale     string `bson:"locale,omitempty" json:"locale,omitempty"`
	Image      string `bson:"image,omitempty" json:"image,omitempty"`

	// Keyed by friend id so a repeated link replaces the summary instead of duplicating it.
	Friends map[string]FriendSummary `bson:"friends,omitempty" json:"friends,omitempty"`
}

// FriendSummary is the denormalized copy of a friend kept on both sides of a link.
type FriendSummary struct {
	ID        string `bson:"id" json:"id"`
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
}

// Summary returns the friend record other users store for u.
func (u *User) Summary() FriendSummary {
	return FriendSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Image:     u.Image,
	}
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// FriendList returns the friends sorted by first name, then last name, then id.
func (u *User) FriendList() []FriendSummary {
	out := make([]FriendSummary, 0, len(u.Friends))
	for _, f := range u.Friends {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out
}
