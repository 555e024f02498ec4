package loot

// ============================================================================
// Rarity Labels
// ============================================================================

// Rarity labels are informational only; they ride along on each drop for the
// UI to style reveal animations.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// ============================================================================
// Bronze Table Odds
// ============================================================================

// BronzeTokensWeight is the weight (70%) of the TOKENS primary outcome.
const BronzeTokensWeight = 70

// BronzeXPBoostWeight is the weight (25%) of the XP_BOOST primary outcome.
const BronzeXPBoostWeight = 25

// BronzeBadgeWeight is the weight (5%) of the BADGE primary outcome.
const BronzeBadgeWeight = 5

// BronzeBonusChance is the independent probability (22%) of a second bonus
// TOKENS drop being appended to a bronze open.
const BronzeBonusChance = 0.22

// ============================================================================
// Reward References
// ============================================================================

const (
	RefXPBoostSmall     = "xp_boost_small"
	RefBadgeConsistency = "Consistency"
	RefBadgeQuickLearner = "Quick Learner"
	RefDiamondPrizePool = "Diamond Prize Pool"
)

// ============================================================================
// Error Messages
// ============================================================================

// Error context messages for wrapped errors during drop table loading
const (
	ErrContextFailedToReadTables  = "failed to read drop tables file"
	ErrContextFailedToParseTables = "failed to parse drop tables"
)
