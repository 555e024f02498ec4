package reward

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/logger"
	"github.com/levelup-app/reward-engine/internal/metrics"
)

// ReportXP ingests an absolute XP total for a user and mints one loot box
// per newly crossed level. The account's XP is raised, never lowered, and
// GrantedUpToLevel records the highest level already rewarded, so repeated
// or out-of-order reports mint each level's box at most once. A nil xpAfter
// leaves the ledger untouched and only reports the pending-box count.
func (s *service) ReportXP(ctx context.Context, userID string, xpAfter *int, source string) (*ReportXPResult, error) {
	if !validUserID(userID) {
		return nil, domain.ErrMissingUser
	}
	// Absent XP is a read-only report: nothing is raised or minted, the
	// caller just learns how many boxes are waiting.
	if xpAfter == nil {
		pending, err := s.repo.CountPendingBoxes(ctx, userID)
		if err != nil {
			return nil, err
		}
		account, err := s.repo.GetAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		level := 0
		if account != nil {
			if level, err = Level(account.XP); err != nil {
				return nil, err
			}
		}
		return &ReportXPResult{
			PendingCount: pending,
			Skipped:      true,
			Level:        level,
		}, nil
	}
	if _, err := Level(*xpAfter); err != nil {
		return nil, err
	}
	if source == "" {
		source = DefaultSource
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	account, err := tx.EnsureAccountForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	newXP := account.XP
	if *xpAfter > newXP {
		newXP = *xpAfter
		if err := tx.RaiseXP(ctx, userID, newXP); err != nil {
			return nil, err
		}
	}

	level, err := Level(newXP)
	if err != nil {
		return nil, err
	}

	created := level - account.GrantedUpToLevel
	if created <= 0 {
		pending, err := tx.CountPendingBoxes(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &ReportXPResult{
			Created:      0,
			PendingCount: pending,
			Skipped:      true,
			Level:        level,
		}, nil
	}

	now := s.now()
	boxes := make([]domain.LootBox, created)
	for i := range boxes {
		boxes[i] = domain.LootBox{
			ID:        uuid.NewString(),
			UserID:    userID,
			Tier:      domain.Tier(MintTier),
			Status:    domain.BoxPending,
			Source:    source,
			CreatedAt: now,
		}
	}
	if err := tx.InsertBoxes(ctx, boxes); err != nil {
		return nil, err
	}
	if err := tx.SetGrantedUpToLevel(ctx, userID, level); err != nil {
		return nil, err
	}

	pending, err := tx.CountPendingBoxes(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One notification per report regardless of how many boxes it minted.
	if err := tx.InsertNotification(ctx, domain.Notification{
		UserID:    userID,
		Type:      domain.NotificationLootEarned,
		Title:     NotificationTitle,
		Body:      notificationBody(level, pending),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.BoxesMinted.WithLabelValues(MintTier).Add(float64(created))
	s.publish(ctx, event.NewLootBoxEarnedEvent(userID, level, created, pending, source))

	logger.Info("loot boxes minted",
		"user_id", userID,
		"level", level,
		"created", created,
		"pending_count", pending,
	)

	return &ReportXPResult{
		Created:      created,
		PendingCount: pending,
		Skipped:      false,
		Level:        level,
	}, nil
}

func notificationBody(level, pending int) string {
	if pending == 1 {
		return fmt.Sprintf(NotificationBodySingle, level, pending)
	}
	return fmt.Sprintf(NotificationBodyPlural, level, pending)
}
