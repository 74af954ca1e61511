package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*models.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*models.Account{}}
}

func (m *memAccounts) Create(_ context.Context, id, email, hash string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return nil, ErrEmailTaken
		}
	}
	a := &models.Account{ID: id, Email: email, PasswordHash: hash, CreatedAt: time.Now(), IsActive: true}
	m.byID[id] = a
	return a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func newTestAuth(t *testing.T) (*AuthService, *memDB, *memAccounts) {
	t.Helper()
	db := newMemDB()
	accounts := newMemAccounts()
	sessions, _ := newTestSessions(t)
	return NewAuthService(accounts, db, NewFriendGraph(db, db, 6), sessions), db, accounts
}

func TestSignupCreatesProfileAndSession(t *testing.T) {
	auth, db, _ := newTestAuth(t)
	ctx := context.Background()

	user, token, err := auth.Signup(ctx, SignupInput{
		Email: " Maya@Example.com ", Password: "longenough", FirstName: " Maya ", LastName: "Ortiz",
	}, "es-MX")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "maya@example.com", user.Email)
	assert.Equal(t, "Maya", user.FirstName)
	assert.Equal(t, "es", user.Locale)
	assert.Len(t, user.FriendCode, 6)
	assert.Equal(t, int64(0), user.Points)
	assert.Contains(t, db.users, user.ID)

	userID, ok, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, userID)
}

// racingUsers lets a rival signup insert the same friend code just before the first insert.
type racingUsers struct {
	*memDB
	raced bool
}

func (r *racingUsers) Create(ctx context.Context, u *models.User) error {
	if !r.raced {
		r.raced = true
		if err := r.memDB.Create(ctx, &models.User{ID: "rival", FriendCode: u.FriendCode}); err != nil {
			return err
		}
	}
	return r.memDB.Create(ctx, u)
}

func TestSignupRetriesTakenFriendCode(t *testing.T) {
	db := newMemDB()
	accounts := newMemAccounts()
	sessions, _ := newTestSessions(t)
	auth := NewAuthService(accounts, &racingUsers{memDB: db}, NewFriendGraph(db, db, 6), sessions)

	user, token, err := auth.Signup(context.Background(), SignupInput{
		Email: "ana@example.com", Password: "longenough", FirstName: "Ana",
	}, "en")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, user.FriendCode, 6)
	assert.NotEqual(t, db.users["rival"].FriendCode, user.FriendCode)
	assert.Equal(t, user.FriendCode, db.users[user.ID].FriendCode)
	assert.Contains(t, accounts.byID, user.ID)
}

func TestSignupFallsBackToRequestLocale(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := i18n.WithLocale(context.Background(), "es")

	user, _, err := auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: "longenough", FirstName: "A"}, "")

	require.NoError(t, err)
	assert.Equal(t, "es", user.Locale)
}

func TestSignupValidation(t *testing.T) {
	auth, db, accounts := newTestAuth(t)
	ctx := context.Background()

	cases := []SignupInput{
		{Email: "bad", Password: "longenough", FirstName: "A"},
		{Email: "a@example.com", Password: "short", FirstName: "A"},
		{Email: "a@example.com", Password: "longenough", FirstName: ""},
	}
	for _, in := range cases {
		_, _, err := auth.Signup(ctx, in, "en")
		var ve *utils.ValidationError
		assert.True(t, errors.As(err, &ve), in)
	}
	assert.Empty(t, db.users)
	assert.Empty(t, accounts.byID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()
	in := SignupInput{Email: "a@example.com", Password: "longenough", FirstName: "A"}

	_, _, err := auth.Signup(ctx, in, "en")
	require.NoError(t, err)

	_, _, err = auth.Signup(ctx, in, "en")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignin(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	created, _, err := auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: "longenough", FirstName: "A"}, "en")
	require.NoError(t, err)

	user, token, err := auth.Signin(ctx, "A@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = auth.Signin(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Signin(ctx, "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.Signout(ctx, token))
	_, ok, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}
