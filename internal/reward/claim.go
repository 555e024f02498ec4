package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/logger"
	"github.com/levelup-app/reward-engine/internal/metrics"
	"github.com/levelup-app/reward-engine/internal/repository"
)

// Claim settles the named OPENED boxes into the user's wallet and inventory
// and marks them CLAIMED. Ids that are malformed fail the whole call; ids
// that do not name an OPENED box owned by the user are skipped without
// error, so a retried claim settles each box exactly once. XP_BOOST drops
// settle twice on purpose: the XP lands on the account and the boost is also
// recorded as an inventory row.
func (s *service) Claim(ctx context.Context, userID string, boxIDs []string) (*ClaimResult, error) {
	if !validUserID(userID) {
		return nil, domain.ErrMissingUser
	}
	if len(boxIDs) == 0 {
		return nil, fmt.Errorf("%w: loot_box_ids is required", domain.ErrInvalidInput)
	}
	for _, id := range boxIDs {
		if err := uuid.Validate(id); err != nil {
			return nil, fmt.Errorf("%w: malformed loot box id %q", domain.ErrInvalidInput, id)
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	boxes, err := tx.SelectOpenedForUpdate(ctx, userID, boxIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tokensAdded := 0
	xpAdded := 0
	claimedIDs := make([]string, 0, len(boxes))
	for _, box := range boxes {
		claimedIDs = append(claimedIDs, box.ID)
		for _, d := range box.Drops {
			switch d.RewardType {
			case domain.RewardTokens:
				tokensAdded += d.Quantity
			case domain.RewardXPBoost:
				xpAdded += d.Quantity
				if err := s.settleInventory(ctx, tx, userID, d, now); err != nil {
					return nil, err
				}
			default:
				if err := s.settleInventory(ctx, tx, userID, d, now); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(claimedIDs) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		balance, err := s.walletBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		logger.Info("loot box claim settled nothing", "user_id", userID, "requested", len(boxIDs))
		return &ClaimResult{TokenBalance: balance}, nil
	}

	// The wallet row is touched even for a token-free claim so the response
	// always carries the current balance.
	balance, err := tx.AddTokens(ctx, userID, tokensAdded)
	if err != nil {
		return nil, err
	}
	if xpAdded > 0 {
		if err := tx.AddXP(ctx, userID, xpAdded); err != nil {
			return nil, err
		}
	}
	if err := tx.MarkClaimed(ctx, claimedIDs, now); err != nil {
		return nil, err
	}
	if err := tx.MarkNotificationsRead(ctx, userID, domain.NotificationLootEarned, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Invalidate(userID)

	metrics.BoxesClaimed.Add(float64(len(claimedIDs)))
	metrics.TokensAwarded.Add(float64(tokensAdded))
	metrics.XPAwarded.Add(float64(xpAdded))
	s.publish(ctx, event.NewLootBoxClaimedEvent(userID, len(claimedIDs), tokensAdded, xpAdded))

	logger.Info("loot boxes claimed",
		"user_id", userID,
		"requested", len(boxIDs),
		"claimed", len(claimedIDs),
		"tokens_added", tokensAdded,
		"xp_added", xpAdded,
	)

	return &ClaimResult{
		Claimed:      len(claimedIDs),
		TokensAdded:  tokensAdded,
		XPAdded:      xpAdded,
		TokenBalance: balance,
	}, nil
}

func (s *service) settleInventory(ctx context.Context, tx repository.RewardTx, userID string, d domain.Drop, now time.Time) error {
	return tx.InsertInventoryItem(ctx, domain.InventoryItem{
		UserID:    userID,
		ItemType:  string(d.RewardType),
		ItemRef:   d.RewardRef,
		Quantity:  d.Quantity,
		CreatedAt: now,
	})
}
