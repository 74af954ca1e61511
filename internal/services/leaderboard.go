package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
)

// LeaderboardRow is one ranked user.
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Image       string `json:"image,omitempty"`
	Points      int64  `json:"points"`
	CurrentUser bool   `json:"current_user"`
}

// LeaderboardView is the ranked top list plus where the caller sits in it.
// CurrentRank is nil when the caller is outside the list.
type LeaderboardView struct {
	Entries     []LeaderboardRow `json:"entries"`
	CurrentRank *int             `json:"current_rank"`
	Unranked    bool             `json:"unranked"`
}

// RankUsers orders users by points descending (ties by id) and keeps the first limit.
// Rank is the 1-based position in that order.
func RankUsers(users []*models.User, currentUserID string, limit int) LeaderboardView {
	sorted := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			sorted = append(sorted, u)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].ID < sorted[j].ID
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]LeaderboardRow, 0, len(sorted))
	for i, u := range sorted {
		rows = append(rows, LeaderboardRow{
			Rank:      i + 1,
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Image:     u.Image,
			Points:    u.Points,
		})
	}
	return markCurrent(rows, currentUserID)
}

func markCurrent(rows []LeaderboardRow, currentUserID string) LeaderboardView {
	view := LeaderboardView{Entries: make([]LeaderboardRow, len(rows)), Unranked: true}
	copy(view.Entries, rows)
	for i := range view.Entries {
		view.Entries[i].CurrentUser = view.Entries[i].UserID == currentUserID
		if view.Entries[i].CurrentUser {
			rank := view.Entries[i].Rank
			view.CurrentRank = &rank
			view.Unranked = false
		}
	}
	return view
}

const leaderboardCacheKey = "leaderboard:top"

// Leaderboard serves the top-N snapshot, cached briefly in Redis.
type Leaderboard struct {
	users UserStore
	cache *CacheService
	limit int
	ttl   time.Duration
}

func NewLeaderboard(users UserStore, cache *CacheService, limit int, ttl time.Duration) *Leaderboard {
	if limit <= 0 {
		limit = 25
	}
	return &Leaderboard{users: users, cache: cache, limit: limit, ttl: ttl}
}

// ForUser returns the snapshot with userID's rank, or unranked when they are outside the top N.
func (l *Leaderboard) ForUser(ctx context.Context, userID string) (LeaderboardView, error) {
	key := CacheKey(leaderboardCacheKey, strconv.Itoa(l.limit))

	var rows []LeaderboardRow
	hit, err := l.cache.Get(ctx, key, &rows)
	if err != nil {
		logger.Log.WithError(err).Warn("leaderboard: cache read failed")
	}
	if hit {
		return markCurrent(rows, userID), nil
	}

	users, err := l.users.TopByPoints(ctx, l.limit)
	if err != nil {
		return LeaderboardView{}, err
	}
	view := RankUsers(users, "", l.limit)
	if err := l.cache.SetWithTTL(ctx, key, view.Entries, l.ttl); err != nil {
		logger.Log.WithError(err).Warn("leaderboard: cache write failed")
	}
	return markCurrent(view.Entries, userID), nil
}

// Invalidate drops the cached snapshot after a points change.
func (l *Leaderboard) Invalidate(ctx context.Context) {
	key := CacheKey(leaderboardCacheKey, strconv.Itoa(l.limit))
	if err := l.cache.Delete(ctx, key); err != nil {
		logger.Log.WithError(err).Warn("leaderboard: cache invalidate failed")
	}
}
