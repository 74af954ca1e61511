package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/metrics"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// AwardResult reports what an award attempt committed.
type AwardResult struct {
	Awarded int64 `json:"awarded"`
	Total   int64 `json:"total"`
}

// PointsLedger adds challenge rewards to user balances, at most once per entry.
type PointsLedger struct {
	tx      Transactor
	catalog *ChallengeCatalog
	now     func() time.Time
}

func NewPointsLedger(tx Transactor, catalog *ChallengeCatalog) *PointsLedger {
	return &PointsLedger{tx: tx, catalog: catalog, now: time.Now}
}

// AwardForEntry credits the reward of entry's challenge to userID. Entries without a challenge,
// and entries whose challenge is not in the catalog, award nothing. The entry is marked inside the
// same transaction, so re-running after a commit reads the mark and adds nothing.
func (l *PointsLedger) AwardForEntry(ctx context.Context, userID string, entry *models.Entry) (AwardResult, error) {
	if entry == nil || entry.ChallengeID == nil || *entry.ChallengeID == "" {
		return AwardResult{}, nil
	}
	challengeID := *entry.ChallengeID
	log := logger.WithUser(userID).WithFields(logrus.Fields{
		"entry_id":     entry.ID.Hex(),
		"challenge_id": challengeID,
	})

	challenge, ok := l.catalog.Lookup(challengeID)
	if !ok {
		log.Warn("points: unknown challenge id, awarding nothing")
		return AwardResult{}, nil
	}
	if challenge.Points == 0 {
		return AwardResult{}, nil
	}

	var result AwardResult
	err := l.tx.RunTransaction(ctx, func(ctx context.Context, tx DocTx) error {
		result = AwardResult{}

		current, err := tx.GetEntry(ctx, entry.ID)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return ErrForbidden
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		result.Total = user.Points
		if current.PointsAwarded {
			return nil
		}

		total := user.Points + challenge.Points
		if err := tx.SetPoints(ctx, userID, total); err != nil {
			return err
		}
		if err := tx.MarkEntryAwarded(ctx, entry.ID); err != nil {
			return err
		}
		if err := tx.InsertAward(ctx, models.PointsAward{
			UserID:      userID,
			EntryID:     entry.ID.Hex(),
			ChallengeID: challengeID,
			Points:      challenge.Points,
			CreatedAt:   l.now(),
		}); err != nil {
			return err
		}

		result = AwardResult{Awarded: challenge.Points, Total: total}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("points: award aborted")
		return AwardResult{}, fmt.Errorf("award points: %w", err)
	}

	if result.Awarded > 0 {
		metrics.RecordPointsAwarded(challengeID, result.Awarded)
		log.WithField("points", result.Awarded).Info("points: awarded")
	}
	return result, nil
}
