package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/google/uuid"
)

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthService signs users up and in. Credentials go to the account store, the profile to the user store.
type AuthService struct {
	accounts AccountStore
	users    UserStore
	friends  *FriendGraph
	sessions *SessionService
	now      func() time.Time
}

func NewAuthService(accounts AccountStore, users UserStore, friends *FriendGraph, sessions *SessionService) *AuthService {
	return &AuthService{accounts: accounts, users: users, friends: friends, sessions: sessions, now: time.Now}
}

// Signup creates the account and its profile, then opens a session. locale is the language the
// request was made in and becomes the profile's display language.
func (s *AuthService) Signup(ctx context.Context, in SignupInput, locale string) (*models.User, string, error) {
	email := utils.NormalizeEmail(in.Email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}
	if err := utils.ValidateName("first_name", in.FirstName, true); err != nil {
		return nil, "", err
	}
	if err := utils.ValidateName("last_name", in.LastName, false); err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	id := uuid.New().String()
	if _, err := s.accounts.Create(ctx, id, email, hash); err != nil {
		return nil, "", err
	}

	lang, ok := i18n.Match(locale)
	if !ok {
		lang = i18n.FromContext(ctx)
	}

	now := s.now()
	user := &models.User{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Locale:    lang,
	}
	// Another signup can claim the same code between the check and the insert.
	for attempt := 1; ; attempt++ {
		code, err := s.friends.AssignFriendCode(ctx, id)
		if err != nil {
			s.rollbackAccount(ctx, id)
			return nil, "", fmt.Errorf("assign friend code: %w", err)
		}
		user.FriendCode = code

		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		if errors.Is(err, ErrFriendCodeTaken) && attempt < maxFriendCodeAttempts {
			logger.WithUser(id).WithField("friend_code", code).Warn("auth: friend code taken, retrying")
			continue
		}
		s.rollbackAccount(ctx, id)
		return nil, "", fmt.Errorf("create profile: %w", err)
	}

	token, err := s.sessions.CreateSession(ctx, id)
	if err != nil {
		return nil, "", err
	}
	logger.WithUser(id).Info("auth: signed up")
	return user, token, nil
}

// Signin checks credentials and opens a session. Unknown email and wrong password look the same.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*models.User, string, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !account.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	token, err := s.sessions.CreateSession(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Signout(ctx context.Context, token string) error {
	return s.sessions.InvalidateSession(ctx, token)
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, bool, error) {
	return s.sessions.ValidateSession(ctx, token)
}

// Refresh slides an active session's expiry forward.
func (s *AuthService) Refresh(ctx context.Context, token string) error {
	return s.sessions.RefreshSession(ctx, token)
}

func (s *AuthService) rollbackAccount(ctx context.Context, id string) {
	if err := s.accounts.Delete(ctx, id); err != nil {
		logger.WithUser(id).WithError(err).Error("auth: orphaned account after failed signup")
	}
}
