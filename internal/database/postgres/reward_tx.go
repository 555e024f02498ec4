package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// RewardTx implements repository.RewardTx over a pgx transaction. All row
// locks acquired through the ForUpdate methods are held until Commit or
// Rollback.
type RewardTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *RewardTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back after a commit is a
// no-op, so callers can defer it unconditionally.
func (t *RewardTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// EnsureAccountForUpdate creates the account row if absent, then locks and
// returns it. The lock serializes concurrent ReportXP/Claim calls for the
// same user.
func (t *RewardTx) EnsureAccountForUpdate(ctx context.Context, userID string) (*domain.Account, error) {
	insert := `
		INSERT INTO accounts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := t.tx.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}

	query := `
		SELECT user_id, xp, granted_up_to_level, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`
	account, err := scanAccount(t.tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// RaiseXP raises the account's XP to xp if it is higher than the stored
// value. XP is never lowered by this path.
func (t *RewardTx) RaiseXP(ctx context.Context, userID string, xp int) error {
	query := `
		UPDATE accounts
		SET xp = GREATEST(xp, $2), updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := t.tx.Exec(ctx, query, userID, xp); err != nil {
		return fmt.Errorf("failed to raise xp: %w", err)
	}
	return nil
}

// AddXP increments the account's XP by delta
func (t *RewardTx) AddXP(ctx context.Context, userID string, delta int) error {
	query := `
		UPDATE accounts
		SET xp = xp + $2, updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := t.tx.Exec(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("failed to add xp: %w", err)
	}
	return nil
}

// SetGrantedUpToLevel advances the grant high-water mark. GREATEST keeps the
// mark monotonic even under unexpected call orders.
func (t *RewardTx) SetGrantedUpToLevel(ctx context.Context, userID string, level int) error {
	query := `
		UPDATE accounts
		SET granted_up_to_level = GREATEST(granted_up_to_level, $2), updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := t.tx.Exec(ctx, query, userID, level); err != nil {
		return fmt.Errorf("failed to set granted level: %w", err)
	}
	return nil
}

// CountPendingBoxes returns the number of PENDING boxes for the user
func (t *RewardTx) CountPendingBoxes(ctx context.Context, userID string) (int, error) {
	return countPendingBoxes(ctx, t.tx, userID)
}

// InsertBoxes inserts the given boxes with their client-generated ids
func (t *RewardTx) InsertBoxes(ctx context.Context, boxes []domain.LootBox) error {
	query := `
		INSERT INTO loot_boxes (loot_box_id, user_id, tier, status, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, box := range boxes {
		if _, err := t.tx.Exec(ctx, query, box.ID, box.UserID, string(box.Tier), string(box.Status), nullString(box.Source), box.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert loot box: %w", err)
		}
	}
	return nil
}

// SelectPendingForUpdate locks and returns up to limit PENDING boxes,
// oldest first. SKIP LOCKED keeps two concurrent open calls from ever
// selecting the same box.
func (t *RewardTx) SelectPendingForUpdate(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	query := `
		SELECT loot_box_id, user_id, tier, status, COALESCE(source, ''), created_at, opened_at, claimed_at
		FROM loot_boxes
		WHERE user_id = $1 AND status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	rows, err := t.tx.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending boxes: %w", err)
	}
	defer rows.Close()
	return scanBoxes(rows)
}

// MarkOpened flips a PENDING box to OPENED and stamps openedAt. The status
// predicate makes the transition exactly-once.
func (t *RewardTx) MarkOpened(ctx context.Context, boxID string, openedAt time.Time) error {
	query := `
		UPDATE loot_boxes
		SET status = 'OPENED', opened_at = $2
		WHERE loot_box_id = $1 AND status = 'PENDING'
	`
	tag, err := t.tx.Exec(ctx, query, boxID, openedAt)
	if err != nil {
		return fmt.Errorf("failed to mark box opened: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidStatus, boxID)
	}
	return nil
}

// InsertDrops persists the drops generated for a box
func (t *RewardTx) InsertDrops(ctx context.Context, boxID string, drops []domain.Drop) error {
	query := `
		INSERT INTO loot_drops (loot_box_id, reward_type, reward_ref, quantity, rarity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, d := range drops {
		if _, err := t.tx.Exec(ctx, query, boxID, string(d.RewardType), nullString(d.RewardRef), d.Quantity, d.Rarity); err != nil {
			return fmt.Errorf("failed to insert drop: %w", err)
		}
	}
	return nil
}

// SelectOpenedForUpdate locks and returns the subset of boxIDs that belong
// to the user and are OPENED, drops attached. Ids that do not match are
// silently absent from the result.
func (t *RewardTx) SelectOpenedForUpdate(ctx context.Context, userID string, boxIDs []string) ([]domain.LootBox, error) {
	if len(boxIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT loot_box_id, user_id, tier, status, COALESCE(source, ''), created_at, opened_at, claimed_at
		FROM loot_boxes
		WHERE user_id = $1 AND status = 'OPENED' AND loot_box_id = ANY($2)
		ORDER BY created_at ASC
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, userID, boxIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to select opened boxes: %w", err)
	}
	boxes, err := scanBoxes(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := attachDrops(ctx, t.tx, boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// MarkClaimed flips the given OPENED boxes to CLAIMED
func (t *RewardTx) MarkClaimed(ctx context.Context, boxIDs []string, claimedAt time.Time) error {
	if len(boxIDs) == 0 {
		return nil
	}
	query := `
		UPDATE loot_boxes
		SET status = 'CLAIMED', claimed_at = $2
		WHERE loot_box_id = ANY($1) AND status = 'OPENED'
	`
	if _, err := t.tx.Exec(ctx, query, boxIDs, claimedAt); err != nil {
		return fmt.Errorf("failed to mark boxes claimed: %w", err)
	}
	return nil
}

// AddTokens materializes the wallet row if needed and increments the
// balance, returning the new balance. Delta is never negative.
func (t *RewardTx) AddTokens(ctx context.Context, userID string, delta int) (int, error) {
	query := `
		INSERT INTO wallets (user_id, token_balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET token_balance = wallets.token_balance + EXCLUDED.token_balance
		RETURNING token_balance
	`
	var balance int
	if err := t.tx.QueryRow(ctx, query, userID, delta).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to add tokens: %w", err)
	}
	return balance, nil
}

// InsertInventoryItem appends one inventory ledger row
func (t *RewardTx) InsertInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (user_id, item_type, item_ref, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, query, item.UserID, item.ItemType, nullString(item.ItemRef), item.Quantity, item.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return nil
}

// InsertNotification persists a notification row
func (t *RewardTx) InsertNotification(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, query, n.UserID, n.Type, n.Title, n.Body, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// MarkNotificationsRead marks all unread notifications of the given type read
func (t *RewardTx) MarkNotificationsRead(ctx context.Context, userID, notificationType string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET read_at = $3
		WHERE user_id = $1 AND type = $2 AND read_at IS NULL
	`
	if _, err := t.tx.Exec(ctx, query, userID, notificationType, readAt); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
