package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/repository"
)

// RewardRepository implements the reward repository for PostgreSQL
type RewardRepository struct {
	db *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// BeginTx starts a new transaction
func (r *RewardRepository) BeginTx(ctx context.Context) (repository.RewardTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &RewardTx{tx: tx}, nil
}

// GetAccount retrieves an account by user id. Returns nil if the account
// does not exist yet; a missing account reads as zero XP.
func (r *RewardRepository) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
		SELECT user_id, xp, granted_up_to_level, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	return scanAccount(r.db.QueryRow(ctx, query, userID))
}

// GetWallet retrieves the user's wallet. Returns nil if no row exists;
// a missing wallet is equivalent to a zero balance.
func (r *RewardRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `
		SELECT user_id, token_balance
		FROM wallets
		WHERE user_id = $1
	`
	return scanWallet(r.db.QueryRow(ctx, query, userID))
}

// CountPendingBoxes returns the number of PENDING boxes for the user
func (r *RewardRepository) CountPendingBoxes(ctx context.Context, userID string) (int, error) {
	return countPendingBoxes(ctx, r.db, userID)
}

// ListPendingBoxes returns up to limit PENDING boxes, newest first
// (display order; opening consumes oldest first).
func (r *RewardRepository) ListPendingBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	query := `
		SELECT loot_box_id, user_id, tier, status, COALESCE(source, ''), created_at, opened_at, claimed_at
		FROM loot_boxes
		WHERE user_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending boxes: %w", err)
	}
	defer rows.Close()
	return scanBoxes(rows)
}

// ListSettledBoxes returns up to limit OPENED or CLAIMED boxes with their
// drops, newest first.
func (r *RewardRepository) ListSettledBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	query := `
		SELECT loot_box_id, user_id, tier, status, COALESCE(source, ''), created_at, opened_at, claimed_at
		FROM loot_boxes
		WHERE user_id = $1 AND status IN ('OPENED', 'CLAIMED')
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled boxes: %w", err)
	}
	boxes, err := scanBoxes(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := attachDrops(ctx, r.db, boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// ListInventory returns up to limit inventory ledger rows, newest first
func (r *RewardRepository) ListInventory(ctx context.Context, userID string, limit int) ([]domain.InventoryItem, error) {
	query := `
		SELECT inventory_item_id, user_id, item_type, COALESCE(item_ref, ''), quantity, created_at
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY created_at DESC, inventory_item_id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ItemType, &it.ItemRef, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
