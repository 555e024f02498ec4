package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx, letting the shared
// scan helpers run inside or outside a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nullString converts "" to nil so empty refs land as SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanAccount scans one account row. Returns (nil, nil) when no row exists.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.UserID, &a.XP, &a.GrantedUpToLevel, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// scanWallet scans one wallet row. Returns (nil, nil) when no row exists.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.UserID, &w.TokenBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}
	return &w, nil
}

// scanBoxes drains a loot box result set
func scanBoxes(rows pgx.Rows) ([]domain.LootBox, error) {
	var boxes []domain.LootBox
	for rows.Next() {
		var (
			b      domain.LootBox
			tier   string
			status string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &tier, &status, &b.Source, &b.CreatedAt, &b.OpenedAt, &b.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loot box: %w", err)
		}
		b.Tier = domain.Tier(tier)
		b.Status = domain.BoxStatus(status)
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

// attachDrops loads the drops for every box in boxes in one query
func attachDrops(ctx context.Context, q queryer, boxes []domain.LootBox) error {
	if len(boxes) == 0 {
		return nil
	}

	ids := make([]string, len(boxes))
	index := make(map[string]int, len(boxes))
	for i, b := range boxes {
		ids[i] = b.ID
		index[b.ID] = i
	}

	query := `
		SELECT drop_id, loot_box_id, reward_type, COALESCE(reward_ref, ''), quantity, rarity
		FROM loot_drops
		WHERE loot_box_id = ANY($1)
		ORDER BY drop_id ASC
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load drops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d          domain.Drop
			rewardType string
		)
		if err := rows.Scan(&d.ID, &d.LootBoxID, &rewardType, &d.RewardRef, &d.Quantity, &d.Rarity); err != nil {
			return fmt.Errorf("failed to scan drop: %w", err)
		}
		d.RewardType = domain.RewardType(rewardType)
		if i, ok := index[d.LootBoxID]; ok {
			boxes[i].Drops = append(boxes[i].Drops, d)
		}
	}
	return rows.Err()
}

// countPendingBoxes counts PENDING boxes inside or outside a transaction
func countPendingBoxes(ctx context.Context, q queryer, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loot_boxes
		WHERE user_id = $1 AND status = 'PENDING'
	`
	var count int
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending boxes: %w", err)
	}
	return count, nil
}
