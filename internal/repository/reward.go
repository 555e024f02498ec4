package repository

import (
	"context"
	"time"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// Reward defines the interface for reward-economy persistence. Read methods
// run outside a transaction; every mutating operation goes through a
// RewardTx so that read-decide-write sequences are serializable per user.
type Reward interface {
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	CountPendingBoxes(ctx context.Context, userID string) (int, error)
	ListPendingBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error)
	ListSettledBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error)
	ListInventory(ctx context.Context, userID string, limit int) ([]domain.InventoryItem, error)
	BeginTx(ctx context.Context) (RewardTx, error)
}

// RewardTx defines the interface for reward transactions. ForUpdate methods
// take row locks that are held until Commit/Rollback.
type RewardTx interface {
	Tx

	// Account ledger
	EnsureAccountForUpdate(ctx context.Context, userID string) (*domain.Account, error)
	RaiseXP(ctx context.Context, userID string, xp int) error
	AddXP(ctx context.Context, userID string, delta int) error
	SetGrantedUpToLevel(ctx context.Context, userID string, level int) error

	// Loot boxes
	CountPendingBoxes(ctx context.Context, userID string) (int, error)
	InsertBoxes(ctx context.Context, boxes []domain.LootBox) error
	SelectPendingForUpdate(ctx context.Context, userID string, limit int) ([]domain.LootBox, error)
	MarkOpened(ctx context.Context, boxID string, openedAt time.Time) error
	InsertDrops(ctx context.Context, boxID string, drops []domain.Drop) error
	SelectOpenedForUpdate(ctx context.Context, userID string, boxIDs []string) ([]domain.LootBox, error)
	MarkClaimed(ctx context.Context, boxIDs []string, claimedAt time.Time) error

	// Wallet & inventory
	AddTokens(ctx context.Context, userID string, delta int) (int, error)
	InsertInventoryItem(ctx context.Context, item domain.InventoryItem) error

	// Notifications
	InsertNotification(ctx context.Context, n domain.Notification) error
	MarkNotificationsRead(ctx context.Context, userID, notificationType string, readAt time.Time) error
}
