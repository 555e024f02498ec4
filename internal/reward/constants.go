package reward

import "time"

// LevelSpan is the XP width of one level: level = xp/LevelSpan + 1.
const LevelSpan = 500

// MintTier is the tier of every minted box. Tier selection per level is a
// product decision still pending; routing it through one constant keeps that
// change local.
const MintTier = "BRONZE"

// Open batch limits
const (
	// OpenAll requests every pending box, subject to MaxOpenAllCount.
	OpenAll = -1

	// MaxOpenCount caps an explicit open count per call.
	MaxOpenCount = 10

	// MaxOpenAllCount caps an open-all call.
	MaxOpenAllCount = 50
)

// Listing limits
const (
	PendingListLimit      = 50
	HistoryBoxLimit       = 50
	HistoryInventoryLimit = 100
)

// Wallet balance cache
const (
	WalletCacheSize = 1024
	WalletCacheTTL  = 30 * time.Second
)

// Notification copy
const (
	NotificationTitle      = "Reward unlocked!"
	NotificationBodySingle = "You reached Level %d. You now have %d loot box ready to open."
	NotificationBodyPlural = "You reached Level %d. You now have %d loot boxes ready to open."
)

// DefaultSource is recorded on minted boxes when the caller omits a source.
const DefaultSource = "level_up"
