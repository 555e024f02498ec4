package loot

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// scriptedRnd returns a rnd func that replays the given values in order.
func scriptedRnd(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestGenerateBronze_TokensPrimary(t *testing.T) {
	// 0.0 -> primary pick lands on TOKENS, 0.0 -> min quantity, 0.99 -> no bonus
	gen, err := NewGenerator(nil, scriptedRnd(0.0, 0.0, 0.99))
	require.NoError(t, err)

	drops, err := gen.Generate(domain.TierBronze)
	require.NoError(t, err)
	require.Len(t, drops, 1)

	assert.Equal(t, domain.RewardTokens, drops[0].RewardType)
	assert.Equal(t, 10, drops[0].Quantity)
	assert.Equal(t, RarityCommon, drops[0].Rarity)
	assert.Empty(t, drops[0].RewardRef)
}

func TestGenerateBronze_BadgeSecondaryPick(t *testing.T) {
	// 0.99 -> primary pick falls through to BADGE, 0.7 -> secondary pick
	// resolves to the 40-weight label, 0.5 -> no bonus (badge qty is fixed
	// at 1, so no quantity roll is consumed).
	gen, err := NewGenerator(nil, scriptedRnd(0.99, 0.7, 0.5))
	require.NoError(t, err)

	drops, err := gen.Generate(domain.TierBronze)
	require.NoError(t, err)
	require.Len(t, drops, 1)

	assert.Equal(t, domain.RewardBadge, drops[0].RewardType)
	assert.Equal(t, RefBadgeQuickLearner, drops[0].RewardRef)
	assert.Equal(t, 1, drops[0].Quantity)
	assert.Equal(t, RarityRare, drops[0].Rarity)
}

func TestGenerateBronze_BonusTokens(t *testing.T) {
	// 0.1 < BronzeBonusChance triggers the independent bonus roll.
	gen, err := NewGenerator(nil, scriptedRnd(0.0, 0.0, 0.1, 0.0))
	require.NoError(t, err)

	drops, err := gen.Generate(domain.TierBronze)
	require.NoError(t, err)
	require.Len(t, drops, 2)

	assert.Equal(t, domain.RewardTokens, drops[1].RewardType)
	assert.Equal(t, 5, drops[1].Quantity)
}

func TestGenerateSilver_ExtendsBronze(t *testing.T) {
	gen, err := NewGenerator(nil, scriptedRnd(0.0, 0.0, 0.99, 0.0))
	require.NoError(t, err)

	drops, err := gen.Generate(domain.TierSilver)
	require.NoError(t, err)
	require.Len(t, drops, 2)

	// Bronze roll first, then the silver guaranteed tokens.
	assert.Equal(t, domain.RewardTokens, drops[0].RewardType)
	last := drops[len(drops)-1]
	assert.Equal(t, domain.RewardTokens, last.RewardType)
	assert.Equal(t, 15, last.Quantity)
	assert.Equal(t, RarityUncommon, last.Rarity)
}

func TestGenerateDiamond_GuaranteedDrops(t *testing.T) {
	gen, err := NewGenerator(nil, scriptedRnd(0.0))
	require.NoError(t, err)

	drops, err := gen.Generate(domain.TierDiamond)
	require.NoError(t, err)
	require.Len(t, drops, 2)

	assert.Equal(t, domain.RewardPrize, drops[0].RewardType)
	assert.Equal(t, RefDiamondPrizePool, drops[0].RewardRef)
	assert.Equal(t, domain.RewardTokens, drops[1].RewardType)
	assert.Equal(t, 150, drops[1].Quantity)
	assert.Equal(t, RarityLegendary, drops[1].Rarity)
}

func TestGenerate_UnknownTier(t *testing.T) {
	gen, err := NewGenerator(nil, scriptedRnd(0.0))
	require.NoError(t, err)

	_, err = gen.Generate(domain.Tier("WOODEN"))
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestBronzeDistribution(t *testing.T) {
	const draws = 100_000
	const tolerance = 0.02

	rng := rand.New(rand.NewSource(42))
	gen, err := NewGenerator(nil, rng.Float64)
	require.NoError(t, err)

	counts := map[domain.RewardType]int{}
	bonuses := 0
	for i := 0; i < draws; i++ {
		drops, err := gen.Generate(domain.TierBronze)
		require.NoError(t, err)
		require.NotEmpty(t, drops)

		// The first drop is always the primary pick; anything after it is
		// the bonus sprinkle.
		counts[drops[0].RewardType]++
		if len(drops) > 1 {
			bonuses++
		}
	}

	assert.InDelta(t, 0.70, float64(counts[domain.RewardTokens])/draws, tolerance)
	assert.InDelta(t, 0.25, float64(counts[domain.RewardXPBoost])/draws, tolerance)
	assert.InDelta(t, 0.05, float64(counts[domain.RewardBadge])/draws, tolerance)
	assert.InDelta(t, BronzeBonusChance, float64(bonuses)/draws, tolerance)
}

func TestBronzeQuantityBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	gen, err := NewGenerator(nil, rng.Float64)
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		drops, err := gen.Generate(domain.TierBronze)
		require.NoError(t, err)
		for _, d := range drops {
			assert.Positive(t, d.Quantity)
			switch {
			case d.RewardType == domain.RewardXPBoost:
				assert.GreaterOrEqual(t, d.Quantity, 50)
				assert.LessOrEqual(t, d.Quantity, 150)
			case d.RewardType == domain.RewardBadge:
				assert.Equal(t, 1, d.Quantity)
			}
		}
	}
}

func TestDefaultTablesValid(t *testing.T) {
	assert.NoError(t, DefaultTables().Validate())
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop_tables.json")
	data, err := json.Marshal(tablesFile{Tiers: DefaultTables()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Len(t, tables, 5)

	_, err = LoadTables(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateRejectsBadTables(t *testing.T) {
	bad := Tables{
		domain.TierBronze: {
			Primary: []Candidate{{Weight: 0, RewardType: domain.RewardTokens, MinQty: 1, MaxQty: 2}},
		},
	}
	assert.Error(t, bad.Validate())

	cyclic := Tables{
		domain.TierBronze: {Extends: domain.TierBronze},
	}
	assert.Error(t, cyclic.Validate())

	missing := Tables{
		domain.TierSilver: {Extends: domain.TierGold},
	}
	assert.Error(t, missing.Validate())
}
