package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFriendUsers(db *memDB) {
	db.users["alice-1"] = &models.User{ID: "alice-1", FirstName: "Alice", LastName: "Ng", FriendCode: "ALICE1", Image: "https://img/a"}
	db.users["bob-2"] = &models.User{ID: "bob-2", FirstName: "Bob", LastName: "Ruiz", FriendCode: "BOB222"}
}

func TestAddFriendByCodeLinksBothSides(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	g := NewFriendGraph(db, db, 6)

	added, err := g.AddFriendByCode(context.Background(), "alice-1", "  bob222 ")

	require.NoError(t, err)
	assert.Equal(t, "bob-2", added.ID)
	assert.Equal(t, models.FriendSummary{ID: "bob-2", FirstName: "Bob", LastName: "Ruiz"}, db.users["alice-1"].Friends["bob-2"])
	assert.Equal(t, models.FriendSummary{ID: "alice-1", FirstName: "Alice", LastName: "Ng", Image: "https://img/a"}, db.users["bob-2"].Friends["alice-1"])
}

func TestAddFriendByCodeRejectsSelfWithoutWrites(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	g := NewFriendGraph(db, db, 6)

	_, err := g.AddFriendByCode(context.Background(), "alice-1", "alice1")

	assert.ErrorIs(t, err, ErrCannotAddSelf)
	assert.Empty(t, db.users["alice-1"].Friends)
	assert.Equal(t, 0, db.attempts)
	assert.Equal(t, 0, db.writesCount)
}

func TestAddFriendByCodeNotFound(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	g := NewFriendGraph(db, db, 6)

	_, err := g.AddFriendByCode(context.Background(), "alice-1", "ZZZZZZ")
	assert.ErrorIs(t, err, ErrFriendCodeNotFound)

	_, err = g.AddFriendByCode(context.Background(), "alice-1", "   ")
	var ve *utils.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, 0, db.writesCount)
}

func TestAddFriendByCodeIsAllOrNothing(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	db.failFriend = "bob-2"
	g := NewFriendGraph(db, db, 6)

	_, err := g.AddFriendByCode(context.Background(), "alice-1", "BOB222")

	require.Error(t, err)
	assert.Empty(t, db.users["alice-1"].Friends)
	assert.Empty(t, db.users["bob-2"].Friends)
}

func TestAddFriendByCodeTwiceKeepsOneRecord(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	g := NewFriendGraph(db, db, 6)
	ctx := context.Background()

	_, err := g.AddFriendByCode(ctx, "alice-1", "BOB222")
	require.NoError(t, err)

	db.users["bob-2"].Image = "https://img/b-new"
	_, err = g.AddFriendByCode(ctx, "alice-1", "BOB222")
	require.NoError(t, err)

	assert.Len(t, db.users["alice-1"].Friends, 1)
	assert.Equal(t, "https://img/b-new", db.users["alice-1"].Friends["bob-2"].Image)
	assert.Len(t, db.users["bob-2"].Friends, 1)
}

func TestListFriendsSorted(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	db.users["cat-3"] = &models.User{ID: "cat-3", FirstName: "Ana", FriendCode: "CAT333"}
	g := NewFriendGraph(db, db, 6)
	ctx := context.Background()

	_, err := g.AddFriendByCode(ctx, "alice-1", "BOB222")
	require.NoError(t, err)
	_, err = g.AddFriendByCode(ctx, "alice-1", "CAT333")
	require.NoError(t, err)

	friends, err := g.ListFriends(ctx, "alice-1")
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "cat-3", friends[0].ID)
	assert.Equal(t, "bob-2", friends[1].ID)
}

func TestAssignFriendCodeUsesIDSuffix(t *testing.T) {
	db := newMemDB()
	g := NewFriendGraph(db, db, 6)

	code, err := g.AssignFriendCode(context.Background(), "3f2b9c1e-8a7d-4e2f-9b1a-0c2d4e6f8a9b")
	require.NoError(t, err)
	assert.Equal(t, "6F8A9B", code)
}

func TestAssignFriendCodeAvoidsCollision(t *testing.T) {
	db := newMemDB()
	db.users["x"] = &models.User{ID: "x", FriendCode: "6F8A9B"}
	g := NewFriendGraph(db, db, 6)

	code, err := g.AssignFriendCode(context.Background(), "3f2b9c1e-8a7d-4e2f-9b1a-0c2d4e6f8a9b")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.NotEqual(t, "6F8A9B", code)
	assert.Equal(t, NormalizeFriendCode(code), code)
}

func TestAuditSymmetryRepairsOneSidedLinks(t *testing.T) {
	db := newMemDB()
	seedFriendUsers(db)
	db.users["alice-1"].Friends = map[string]models.FriendSummary{
		"bob-2":   {ID: "bob-2", FirstName: "Bob"},
		"ghost-9": {ID: "ghost-9", FirstName: "Gone"},
	}
	g := NewFriendGraph(db, db, 6)

	n, err := g.AuditSymmetry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Alice", db.users["bob-2"].Friends["alice-1"].FirstName)

	n, err = g.AuditSymmetry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStartFriendAuditor(t *testing.T) {
	db := newMemDB()
	g := NewFriendGraph(db, db, 6)

	c, err := StartFriendAuditor("", g)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = StartFriendAuditor("not a schedule", g)
	assert.Error(t, err)

	c, err = StartFriendAuditor("@every 1h", g)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	c.Stop()
}
