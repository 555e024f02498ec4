package reward

import (
	"context"
	"strings"
	"time"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/loot"
	"github.com/levelup-app/reward-engine/internal/repository"
)

// ReportXPResult is the outcome of an XP report.
type ReportXPResult struct {
	Created      int  `json:"created"`
	PendingCount int  `json:"pending_count"`
	Skipped      bool `json:"skipped"`
	Level        int  `json:"level"`
}

// OpenedBox is one box opened in a batch, with its freshly rolled drops.
type OpenedBox struct {
	BoxID string        `json:"loot_box_id"`
	Tier  domain.Tier   `json:"tier"`
	Drops []domain.Drop `json:"drops"`
}

// ClaimResult is the settlement summary of a claim call.
type ClaimResult struct {
	Claimed      int `json:"claimed"`
	TokensAdded  int `json:"tokens_added"`
	XPAdded      int `json:"xp_added"`
	TokenBalance int `json:"token_balance"`
}

// PendingBox is a pending box as listed for display.
type PendingBox struct {
	BoxID     string      `json:"loot_box_id"`
	Tier      domain.Tier `json:"tier"`
	CreatedAt time.Time   `json:"created_at"`
}

// PendingResult lists a user's unopened boxes and current balance.
type PendingResult struct {
	Pending      []PendingBox `json:"pending"`
	TokenBalance int          `json:"token_balance"`
}

// AccountInfo is the account view returned by History.
type AccountInfo struct {
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// HistoryResult is the full reward history view for a user.
type HistoryResult struct {
	Account   *AccountInfo           `json:"account"`
	Wallet    domain.Wallet          `json:"wallet"`
	Boxes     []domain.LootBox       `json:"boxes"`
	Inventory []domain.InventoryItem `json:"inventory"`
}

// Service defines the reward engine operations. All three mutating
// operations are atomic per call and safe to retry.
type Service interface {
	ReportXP(ctx context.Context, userID string, xpAfter *int, source string) (*ReportXPResult, error)
	Open(ctx context.Context, userID string, count int) ([]OpenedBox, error)
	Claim(ctx context.Context, userID string, boxIDs []string) (*ClaimResult, error)
	Pending(ctx context.Context, userID string) (*PendingResult, error)
	History(ctx context.Context, userID string) (*HistoryResult, error)
}

type service struct {
	repo      repository.Reward
	generator loot.Generator
	bus       event.Bus
	cache     *walletCache
	now       func() time.Time
}

// NewService creates a new reward service. A nil bus disables event
// publication; now defaults to time.Now.
func NewService(repo repository.Reward, generator loot.Generator, bus event.Bus) Service {
	return &service{
		repo:      repo,
		generator: generator,
		bus:       bus,
		cache:     newWalletCache(WalletCacheSize, WalletCacheTTL),
		now:       time.Now,
	}
}

func (s *service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	// Event fan-out never fails the reward operation that produced it.
	_ = s.bus.Publish(ctx, e)
}

func validUserID(userID string) bool {
	return strings.TrimSpace(userID) != ""
}

// walletBalance reads the user's balance, treating a missing wallet row as
// zero.
func (s *service) walletBalance(ctx context.Context, userID string) (int, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.TokenBalance, nil
}
