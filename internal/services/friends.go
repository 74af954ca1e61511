package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/metrics"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const maxFriendCodeAttempts = 10

// FriendGraph links users by friend code. Both sides of a link are written in one transaction.
type FriendGraph struct {
	users   UserStore
	tx      Transactor
	codeLen int
}

func NewFriendGraph(users UserStore, tx Transactor, codeLength int) *FriendGraph {
	if codeLength <= 0 {
		codeLength = 6
	}
	return &FriendGraph{users: users, tx: tx, codeLen: codeLength}
}

// NormalizeFriendCode trims and upper-cases user input before lookup.
func NormalizeFriendCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AddFriendByCode links requesterID with the owner of code and returns the new friend's summary.
func (g *FriendGraph) AddFriendByCode(ctx context.Context, requesterID, code string) (*models.FriendSummary, error) {
	code = NormalizeFriendCode(code)
	if code == "" {
		return nil, &utils.ValidationError{Field: "code", Message: "Friend code is required", Key: i18n.MsgCodeRequired}
	}

	target, err := g.users.GetByFriendCode(ctx, code)
	if errors.Is(err, ErrUserNotFound) {
		metrics.RecordFriendLink("not_found")
		return nil, ErrFriendCodeNotFound
	}
	if err != nil {
		metrics.RecordFriendLink("error")
		return nil, err
	}
	if target.ID == requesterID {
		metrics.RecordFriendLink("self")
		return nil, ErrCannotAddSelf
	}

	var added models.FriendSummary
	err = g.tx.RunTransaction(ctx, func(ctx context.Context, tx DocTx) error {
		me, err := tx.GetUser(ctx, requesterID)
		if err != nil {
			return err
		}
		them, err := tx.GetUser(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := tx.PutFriend(ctx, me.ID, them.Summary()); err != nil {
			return err
		}
		if err := tx.PutFriend(ctx, them.ID, me.Summary()); err != nil {
			return err
		}
		added = them.Summary()
		return nil
	})
	if err != nil {
		metrics.RecordFriendLink("error")
		return nil, fmt.Errorf("link friends: %w", err)
	}

	metrics.RecordFriendLink("linked")
	logger.WithUser(requesterID).WithField("friend_id", added.ID).Info("friends: linked")
	return &added, nil
}

// ListFriends returns the user's friends sorted by name.
func (g *FriendGraph) ListFriends(ctx context.Context, userID string) ([]models.FriendSummary, error) {
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.FriendList(), nil
}

// AssignFriendCode picks a code for a new user: the upper-cased tail of the uid when free,
// otherwise random codes until one is unused.
func (g *FriendGraph) AssignFriendCode(ctx context.Context, userID string) (string, error) {
	candidate := codeFromID(userID, g.codeLen)
	for attempt := 0; attempt < maxFriendCodeAttempts; attempt++ {
		if len(candidate) == g.codeLen {
			exists, err := g.users.FriendCodeExists(ctx, candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				return candidate, nil
			}
		}
		candidate = codeFromID(uuid.New().String(), g.codeLen)
	}
	return "", fmt.Errorf("no free friend code after %d attempts", maxFriendCodeAttempts)
}

func codeFromID(id string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(id) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// AuditSymmetry finds one-sided links and writes the missing side. Links to users that
// no longer exist are left alone. It returns how many links were repaired.
func (g *FriendGraph) AuditSymmetry(ctx context.Context) (int, error) {
	repaired := 0
	err := g.users.EachUser(ctx, func(u *models.User) error {
		for friendID := range u.Friends {
			if friendID == u.ID {
				continue
			}
			friend, err := g.users.GetByID(ctx, friendID)
			if errors.Is(err, ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if _, ok := friend.Friends[u.ID]; ok {
				continue
			}

			err = g.tx.RunTransaction(ctx, func(ctx context.Context, tx DocTx) error {
				owner, err := tx.GetUser(ctx, u.ID)
				if err != nil {
					return err
				}
				return tx.PutFriend(ctx, friendID, owner.Summary())
			})
			if err != nil {
				return err
			}
			repaired++
			logger.WithUser(friendID).WithField("friend_id", u.ID).Warn("friends: repaired one-sided link")
		}
		return nil
	})
	return repaired, err
}

// StartFriendAuditor schedules AuditSymmetry on schedule. An empty schedule disables it.
func StartFriendAuditor(schedule string, g *FriendGraph) (*cron.Cron, error) {
	if strings.TrimSpace(schedule) == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := g.AuditSymmetry(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("friends: symmetry audit failed")
			return
		}
		logger.Log.WithField("repaired", n).Info("friends: symmetry audit finished")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule friend auditor: %w", err)
	}
	c.Start()
	return c, nil
}
