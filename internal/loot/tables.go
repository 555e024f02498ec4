package loot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// RefPick is one weighted option for a candidate's reward reference
// (e.g. which badge label a BADGE drop carries).
type RefPick struct {
	Ref    string `json:"ref"`
	Weight int    `json:"weight"`
}

// Candidate defines one possible drop in a tier table. Quantity is drawn
// uniformly from [MinQty, MaxQty]. If RefPicks is non-empty the reward
// reference is chosen by a secondary weighted pick, otherwise RewardRef is
// used as-is.
type Candidate struct {
	Weight     int               `json:"weight,omitempty"`
	RewardType domain.RewardType `json:"reward_type"`
	RewardRef  string            `json:"reward_ref,omitempty"`
	RefPicks   []RefPick         `json:"ref_picks,omitempty"`
	MinQty     int               `json:"min_qty"`
	MaxQty     int               `json:"max_qty"`
	Rarity     string            `json:"rarity"`
}

// BonusDrop is an independent extra roll appended after the primary pick.
type BonusDrop struct {
	Chance    float64   `json:"chance"`
	Candidate Candidate `json:"candidate"`
}

// TierTable is the configuration for one box tier. Exactly-one semantics:
// if Extends is set, the extended tier is rolled first and this table's
// drops are appended; if Primary is non-empty, one weighted pick is made
// from it; every Guaranteed candidate always drops.
type TierTable struct {
	Extends    domain.Tier `json:"extends,omitempty"`
	Primary    []Candidate `json:"primary,omitempty"`
	Guaranteed []Candidate `json:"guaranteed,omitempty"`
	Bonus      *BonusDrop  `json:"bonus,omitempty"`
}

// Tables maps every box tier to its drop table.
type Tables map[domain.Tier]TierTable

// tablesFile is the on-disk shape of a drop tables config.
type tablesFile struct {
	Comment string                    `json:"comment,omitempty"`
	Tiers   map[domain.Tier]TierTable `json:"tiers"`
}

// DefaultTables returns the compiled-in drop tables. Only the BRONZE odds
// are production-vetted; the higher tiers carry placeholder values and are
// expected to be overridden by configuration before those tiers ship.
func DefaultTables() Tables {
	return Tables{
		domain.TierBronze: {
			Primary: []Candidate{
				{Weight: BronzeTokensWeight, RewardType: domain.RewardTokens, MinQty: 10, MaxQty: 30, Rarity: RarityCommon},
				{Weight: BronzeXPBoostWeight, RewardType: domain.RewardXPBoost, RewardRef: RefXPBoostSmall, MinQty: 50, MaxQty: 150, Rarity: RarityUncommon},
				{Weight: BronzeBadgeWeight, RewardType: domain.RewardBadge, RefPicks: []RefPick{
					{Ref: RefBadgeConsistency, Weight: 60},
					{Ref: RefBadgeQuickLearner, Weight: 40},
				}, MinQty: 1, MaxQty: 1, Rarity: RarityRare},
			},
			Bonus: &BonusDrop{
				Chance:    BronzeBonusChance,
				Candidate: Candidate{RewardType: domain.RewardTokens, MinQty: 5, MaxQty: 12, Rarity: RarityCommon},
			},
		},
		domain.TierSilver: {
			Extends: domain.TierBronze,
			Guaranteed: []Candidate{
				{RewardType: domain.RewardTokens, MinQty: 15, MaxQty: 40, Rarity: RarityUncommon},
			},
		},
		domain.TierGold: {
			Guaranteed: []Candidate{
				{RewardType: domain.RewardTokens, MinQty: 40, MaxQty: 90, Rarity: RarityRare},
				{RewardType: domain.RewardRaffleEntry, MinQty: 1, MaxQty: 1, Rarity: RarityRare},
			},
		},
		domain.TierPlatinum: {
			Guaranteed: []Candidate{
				{RewardType: domain.RewardTokens, MinQty: 90, MaxQty: 180, Rarity: RarityEpic},
				{RewardType: domain.RewardRaffleEntry, MinQty: 2, MaxQty: 2, Rarity: RarityEpic},
			},
		},
		domain.TierDiamond: {
			Guaranteed: []Candidate{
				{RewardType: domain.RewardPrize, RewardRef: RefDiamondPrizePool, MinQty: 1, MaxQty: 1, Rarity: RarityLegendary},
				{RewardType: domain.RewardTokens, MinQty: 150, MaxQty: 350, Rarity: RarityLegendary},
			},
		},
	}
}

// LoadTables reads a drop tables JSON file and validates it.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToReadTables, err)
	}

	var file tablesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToParseTables, err)
	}

	tables := Tables(file.Tiers)
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Validate checks structural invariants of the tables: known tiers, positive
// weights and quantity ranges, resolvable Extends chains.
func (t Tables) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("no tiers defined in drop tables")
	}

	for tier, table := range t {
		if !tier.Valid() {
			return fmt.Errorf("%w: %s", domain.ErrUnknownTier, tier)
		}
		if table.Extends != "" {
			if _, ok := t[table.Extends]; !ok {
				return fmt.Errorf("tier %s extends undefined tier %s", tier, table.Extends)
			}
			if table.Extends == tier {
				return fmt.Errorf("tier %s extends itself", tier)
			}
		}
		if len(table.Primary) == 0 && len(table.Guaranteed) == 0 && table.Extends == "" {
			return fmt.Errorf("tier %s has no drops", tier)
		}
		for _, c := range table.Primary {
			if c.Weight <= 0 {
				return fmt.Errorf("tier %s: primary candidate has non-positive weight", tier)
			}
			if err := validateCandidate(tier, c); err != nil {
				return err
			}
		}
		for _, c := range table.Guaranteed {
			if err := validateCandidate(tier, c); err != nil {
				return err
			}
		}
		if table.Bonus != nil {
			if table.Bonus.Chance < 0 || table.Bonus.Chance > 1 {
				return fmt.Errorf("tier %s: bonus chance out of [0,1]", tier)
			}
			if err := validateCandidate(tier, table.Bonus.Candidate); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCandidate(tier domain.Tier, c Candidate) error {
	if c.MinQty < 1 || c.MaxQty < c.MinQty {
		return fmt.Errorf("tier %s: candidate %s has invalid quantity range [%d,%d]", tier, c.RewardType, c.MinQty, c.MaxQty)
	}
	for _, p := range c.RefPicks {
		if p.Weight <= 0 {
			return fmt.Errorf("tier %s: ref pick %q has non-positive weight", tier, p.Ref)
		}
	}
	return nil
}
