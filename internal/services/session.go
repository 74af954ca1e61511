package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionService keeps bearer tokens in Redis. A user has one live session; signing in again
// replaces it and restarts the 7-day timer.
type SessionService struct {
	client *redis.Client
}

func NewSessionService(client *redis.Client) *SessionService {
	return &SessionService{client: client}
}

// CreateSession creates a new session for a user and returns its token.
func (s *SessionService) CreateSession(ctx context.Context, userID string) (string, error) {
	if err := s.InvalidateUserSessions(ctx, userID); err != nil {
		return "", err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+sessionToken, userID, SessionDuration)
	pipe.Set(ctx, UserSessionKeyPrefix+userID, sessionToken, SessionDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sessionToken, nil
}

// ValidateSession returns the user behind a token. ok is false for unknown or expired tokens.
func (s *SessionService) ValidateSession(ctx context.Context, sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, nil
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

// RefreshSession extends the session expiration by 7 days from now
func (s *SessionService) RefreshSession(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return fmt.Errorf("session token is empty")
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err != nil {
		return err
	}
	if err := s.client.Expire(ctx, SessionKeyPrefix+sessionToken, SessionDuration).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, UserSessionKeyPrefix+userID, SessionDuration).Err()
}

// InvalidateSession removes a session from Redis
func (s *SessionService) InvalidateSession(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	sessionKey := SessionKeyPrefix + sessionToken

	userID, err := s.client.Get(ctx, sessionKey).Result()
	if err == nil && userID != "" {
		s.client.Del(ctx, UserSessionKeyPrefix+userID)
	}
	return s.client.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions drops whatever session the user currently has.
func (s *SessionService) InvalidateUserSessions(ctx context.Context, userID string) error {
	userSessionKey := UserSessionKeyPrefix + userID

	sessionToken, err := s.client.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		s.client.Del(ctx, SessionKeyPrefix+sessionToken)
	}
	return s.client.Del(ctx, userSessionKey).Err()
}
