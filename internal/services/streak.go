package services

import (
	"context"
	"strconv"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	// StreakKeyPrefix is the Redis key prefix for a user's streak hash
	StreakKeyPrefix  = "streak:"
	streakDateLayout = "2006-01-02"
)

// StreakOutcome describes what an app open did to the streak.
type StreakOutcome string

const (
	StreakStarted   StreakOutcome = "started"
	StreakUnchanged StreakOutcome = "unchanged"
	StreakAdvanced  StreakOutcome = "advanced"
	StreakReset     StreakOutcome = "reset"
)

// StreakState is the persisted baseline: the civil date of the last open and the streak at that time.
type StreakState struct {
	LastOpened *time.Time
	Streak     int
}

// StreakResult is what an open or a read reports back to the client.
type StreakResult struct {
	Streak     int           `json:"streak"`
	LastOpened string        `json:"last_opened,omitempty"`
	Advanced   bool          `json:"advanced"`
	Outcome    StreakOutcome `json:"outcome,omitempty"`
}

// civilDate drops the clock and zone, keeping only the calendar day as seen in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the number of calendar days from a to b, each read in its own location.
func DaysBetween(a, b time.Time) int {
	return int(civilDate(b).Sub(civilDate(a)).Hours() / 24)
}

// ComputeStreak applies one app open on today to the stored baseline.
// A last-opened date in the future is treated like an open on the same day.
func ComputeStreak(lastOpened *time.Time, stored int, today time.Time) (int, StreakOutcome) {
	if lastOpened == nil {
		return 1, StreakStarted
	}
	diff := DaysBetween(*lastOpened, today)
	switch {
	case diff <= 0:
		return stored, StreakUnchanged
	case diff == 1:
		return stored + 1, StreakAdvanced
	default:
		return 1, StreakReset
	}
}

// StreakStore persists the per-user baseline.
type StreakStore interface {
	Load(ctx context.Context, userID string) (StreakState, error)
	Save(ctx context.Context, userID string, state StreakState) error
}

// RedisStreakStore keeps each user's baseline in a hash with lastOpened and streak fields.
type RedisStreakStore struct {
	client *redis.Client
}

func NewRedisStreakStore(client *redis.Client) *RedisStreakStore {
	return &RedisStreakStore{client: client}
}

func (s *RedisStreakStore) Load(ctx context.Context, userID string) (StreakState, error) {
	vals, err := s.client.HGetAll(ctx, StreakKeyPrefix+userID).Result()
	if err != nil {
		return StreakState{}, err
	}

	var state StreakState
	if raw, ok := vals["lastOpened"]; ok && raw != "" {
		t, err := time.Parse(streakDateLayout, raw)
		if err != nil {
			return StreakState{}, err
		}
		state.LastOpened = &t
	}
	if raw, ok := vals["streak"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return StreakState{}, err
		}
		state.Streak = n
	}
	return state, nil
}

func (s *RedisStreakStore) Save(ctx context.Context, userID string, state StreakState) error {
	fields := map[string]interface{}{
		"streak": strconv.Itoa(state.Streak),
	}
	if state.LastOpened != nil {
		fields["lastOpened"] = state.LastOpened.Format(streakDateLayout)
	}
	return s.client.HSet(ctx, StreakKeyPrefix+userID, fields).Err()
}

// StreakService records app opens. Storage failures never reach the caller;
// they are logged and the streak simply doesn't advance.
type StreakService struct {
	store StreakStore
	now   func() time.Time
}

func NewStreakService(store StreakStore) *StreakService {
	return &StreakService{store: store, now: time.Now}
}

// RecordOpen evaluates an app open for "today" in loc.
func (s *StreakService) RecordOpen(ctx context.Context, userID string, loc *time.Location) StreakResult {
	if loc == nil {
		loc = time.UTC
	}
	log := logger.WithUser(userID)

	state, err := s.store.Load(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("streak: load failed, not advancing")
		metrics.RecordStreakOutcome("error")
		return StreakResult{}
	}

	today := civilDate(s.now().In(loc))
	streak, outcome := ComputeStreak(state.LastOpened, state.Streak, today)
	metrics.RecordStreakOutcome(string(outcome))

	if outcome == StreakUnchanged {
		return toStreakResult(StreakState{LastOpened: state.LastOpened, Streak: streak}, false, outcome)
	}

	next := StreakState{LastOpened: &today, Streak: streak}
	if err := s.store.Save(ctx, userID, next); err != nil {
		log.WithError(err).Warn("streak: save failed, not advancing")
		metrics.RecordStreakOutcome("error")
		return toStreakResult(state, false, StreakUnchanged)
	}
	return toStreakResult(next, true, outcome)
}

// Current returns the stored streak without touching it.
func (s *StreakService) Current(ctx context.Context, userID string) (StreakResult, error) {
	state, err := s.store.Load(ctx, userID)
	if err != nil {
		return StreakResult{}, err
	}
	return toStreakResult(state, false, ""), nil
}

func toStreakResult(state StreakState, advanced bool, outcome StreakOutcome) StreakResult {
	res := StreakResult{Streak: state.Streak, Advanced: advanced, Outcome: outcome}
	if state.LastOpened != nil {
		res.LastOpened = state.LastOpened.Format(streakDateLayout)
	}
	return res
}
