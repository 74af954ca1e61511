package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
)

// MaxAvatarSize is the largest avatar upload accepted, in bytes.
const MaxAvatarSize = 5 << 20

// ProfileStats is what the profile screen shows under the avatar.
type ProfileStats struct {
	Points      int64  `json:"points"`
	Streak      int    `json:"streak"`
	LastOpened  string `json:"last_opened,omitempty"`
	EntryCount  int64  `json:"entry_count"`
	FriendCount int    `json:"friend_count"`
}

type ProfileService struct {
	users   UserStore
	entries EntryStore
	streaks *StreakService
	objects ObjectStore
}

func NewProfileService(users UserStore, entries EntryStore, streaks *StreakService, objects ObjectStore) *ProfileService {
	return &ProfileService{users: users, entries: entries, streaks: streaks, objects: objects}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Stats collects the counters for userID. A streak read failure reports a zero streak.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*ProfileStats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.entries.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	stats := &ProfileStats{Points: u.Points, EntryCount: count, FriendCount: len(u.Friends)}
	if s.streaks != nil {
		streak, err := s.streaks.Current(ctx, userID)
		if err != nil {
			logger.WithUser(userID).WithError(err).Warn("profile: streak read failed")
		} else {
			stats.Streak = streak.Streak
			stats.LastOpened = streak.LastOpened
		}
	}
	return stats, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, userID, firstName, lastName string) (*models.User, error) {
	if err := utils.ValidateName("first_name", firstName, true); err != nil {
		return nil, err
	}
	if err := utils.ValidateName("last_name", lastName, false); err != nil {
		return nil, err
	}
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	return s.users.Update(ctx, userID, UserPatch{FirstName: &first, LastName: &last})
}

func (s *ProfileService) SetMood(ctx context.Context, userID, mood string) (*models.User, error) {
	if err := utils.ValidateMood(mood); err != nil {
		return nil, err
	}
	mood = strings.TrimSpace(mood)
	return s.users.Update(ctx, userID, UserPatch{Mood: &mood})
}

// SetLocale stores the closest supported language to raw.
func (s *ProfileService) SetLocale(ctx context.Context, userID, raw string) (*models.User, error) {
	lang, ok := i18n.Match(raw)
	if !ok {
		return nil, &utils.ValidationError{
			Field:   "locale",
			Message: "Locale must be one of " + strings.Join(i18n.Supported(), ", "),
		}
	}
	return s.users.Update(ctx, userID, UserPatch{Locale: &lang})
}

// UploadAvatar stores the image under avatars/<uid> and saves its URL on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, data io.Reader, size int64, contentType string) (*models.User, error) {
	if size > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &utils.ValidationError{Field: "file", Message: "Avatar must be an image"}
	}
	if s.objects == nil {
		return nil, errors.New("object storage is not configured")
	}

	key := AvatarKey(userID)
	if err := s.objects.Upload(ctx, key, io.LimitReader(data, MaxAvatarSize), contentType); err != nil {
		return nil, err
	}
	url, err := s.objects.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.users.Update(ctx, userID, UserPatch{Image: &url})
}
