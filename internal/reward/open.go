package reward

import (
	"context"
	"fmt"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/logger"
	"github.com/levelup-app/reward-engine/internal/metrics"
)

// Open transitions up to count PENDING boxes to OPENED, oldest first, and
// rolls their drops. Pass OpenAll to open everything pending in one call,
// capped at MaxOpenAllCount. Opening with nothing pending is not an error;
// it returns an empty slice.
func (s *service) Open(ctx context.Context, userID string, count int) ([]OpenedBox, error) {
	if !validUserID(userID) {
		return nil, domain.ErrMissingUser
	}

	limit := count
	switch {
	case count == OpenAll:
		limit = MaxOpenAllCount
	case count < 1:
		return nil, fmt.Errorf("%w: count must be positive", domain.ErrInvalidInput)
	case count > MaxOpenCount:
		limit = MaxOpenCount
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	boxes, err := tx.SelectPendingForUpdate(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return []OpenedBox{}, nil
	}

	now := s.now()
	opened := make([]OpenedBox, 0, len(boxes))
	for _, box := range boxes {
		drops, err := s.generator.Generate(box.Tier)
		if err != nil {
			return nil, err
		}
		if err := tx.MarkOpened(ctx, box.ID, now); err != nil {
			return nil, err
		}
		if err := tx.InsertDrops(ctx, box.ID, drops); err != nil {
			return nil, err
		}
		opened = append(opened, OpenedBox{
			BoxID: box.ID,
			Tier:  box.Tier,
			Drops: drops,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, box := range opened {
		metrics.BoxesOpened.WithLabelValues(string(box.Tier)).Inc()
		for _, d := range box.Drops {
			metrics.DropsRolled.WithLabelValues(string(d.RewardType)).Inc()
		}
		s.publish(ctx, event.NewLootBoxOpenedEvent(userID, box.BoxID, string(box.Tier), len(box.Drops)))
	}

	logger.Info("loot boxes opened", "user_id", userID, "count", len(opened))

	return opened, nil
}
