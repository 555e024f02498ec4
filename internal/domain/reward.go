package domain

import "time"

// Tier is the rarity class of a loot box. It selects the drop-weight table
// used when the box is opened.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond:
		return true
	}
	return false
}

// BoxStatus is the lifecycle state of a loot box. Transitions are strictly
// forward: PENDING -> OPENED -> CLAIMED.
type BoxStatus string

const (
	BoxPending BoxStatus = "PENDING"
	BoxOpened  BoxStatus = "OPENED"
	BoxClaimed BoxStatus = "CLAIMED"
)

// RewardType categorizes a single drop.
type RewardType string

const (
	RewardTokens      RewardType = "TOKENS"
	RewardXPBoost     RewardType = "XP_BOOST"
	RewardBadge       RewardType = "BADGE"
	RewardRaffleEntry RewardType = "RAFFLE_ENTRY"
	RewardCoupon      RewardType = "COUPON"
	RewardPrize       RewardType = "PRIZE"
)

// Account holds a user's XP ledger. XP and GrantedUpToLevel are both
// monotonically non-decreasing; GrantedUpToLevel never exceeds the level
// derived from XP.
type Account struct {
	UserID           string    `json:"user_id"`
	XP               int       `json:"xp"`
	GrantedUpToLevel int       `json:"granted_up_to_level"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Wallet is the per-user token balance. A missing row is equivalent to a
// zero balance; the row is materialized on first write.
type Wallet struct {
	UserID       string `json:"user_id"`
	TokenBalance int    `json:"token_balance"`
}

// LootBox is a container of randomized rewards.
type LootBox struct {
	ID        string     `json:"loot_box_id"`
	UserID    string     `json:"user_id"`
	Tier      Tier       `json:"tier"`
	Status    BoxStatus  `json:"status"`
	Source    string     `json:"source,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	OpenedAt  *time.Time `json:"opened_at,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	Drops     []Drop     `json:"drops,omitempty"`
}

// Drop is one randomized reward produced when a box is opened. Drops are
// immutable once written.
type Drop struct {
	ID         int64      `json:"drop_id,omitempty"`
	LootBoxID  string     `json:"loot_box_id,omitempty"`
	RewardType RewardType `json:"reward_type"`
	RewardRef  string     `json:"reward_ref,omitempty"`
	Quantity   int        `json:"quantity"`
	Rarity     string     `json:"rarity"`
}

// InventoryItem is an append-only ledger row recording a claimed non-token
// reward. Rows are never aggregated or deleted.
type InventoryItem struct {
	ID        int64     `json:"inventory_item_id"`
	UserID    string    `json:"user_id"`
	ItemType  string    `json:"item_type"`
	ItemRef   string    `json:"item_ref,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationLootEarned is the persisted notification type written when
// boxes are minted and cleared when a claim succeeds.
const NotificationLootEarned = "LOOT_BOX_EARNED"

// Notification is a persisted message surfaced by the UI collaborator.
type Notification struct {
	ID        int64      `json:"notification_id"`
	UserID    string     `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
