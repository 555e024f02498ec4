package loot

import (
	"fmt"
	"math/rand"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// Generator produces the drops for one box open. Implementations are pure
// apart from the injected random source, so a seeded RNG makes draws fully
// deterministic.
type Generator interface {
	Generate(tier domain.Tier) ([]domain.Drop, error)
}

type generator struct {
	tables Tables
	rnd    func() float64 // For rolling RNG
}

// NewGenerator creates a drop generator over the given tables. A nil rnd
// falls back to math/rand.
func NewGenerator(tables Tables, rnd func() float64) (Generator, error) {
	if tables == nil {
		tables = DefaultTables()
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return &generator{tables: tables, rnd: rnd}, nil
}

// NewGeneratorFromFile creates a generator whose tables are loaded from a
// JSON config file.
func NewGeneratorFromFile(path string, rnd func() float64) (Generator, error) {
	tables, err := LoadTables(path)
	if err != nil {
		return nil, err
	}
	return NewGenerator(tables, rnd)
}

// Generate rolls the drop table for one box of the given tier.
func (g *generator) Generate(tier domain.Tier) ([]domain.Drop, error) {
	return g.generate(tier, 0)
}

// extendDepthLimit bounds Extends chains; Validate already rejects direct
// self-references, this guards longer cycles in hand-edited configs.
const extendDepthLimit = 8

func (g *generator) generate(tier domain.Tier, depth int) ([]domain.Drop, error) {
	if depth > extendDepthLimit {
		return nil, fmt.Errorf("drop table extends chain too deep at tier %s", tier)
	}

	table, ok := g.tables[tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTier, tier)
	}

	var drops []domain.Drop

	if table.Extends != "" {
		base, err := g.generate(table.Extends, depth+1)
		if err != nil {
			return nil, err
		}
		drops = append(drops, base...)
	}

	if len(table.Primary) > 0 {
		drops = append(drops, g.roll(pickWeighted(table.Primary, g.rnd())))
	}

	for _, c := range table.Guaranteed {
		drops = append(drops, g.roll(c))
	}

	if table.Bonus != nil && g.rnd() < table.Bonus.Chance {
		drops = append(drops, g.roll(table.Bonus.Candidate))
	}

	return drops, nil
}

// roll materializes a candidate into a concrete drop.
func (g *generator) roll(c Candidate) domain.Drop {
	ref := c.RewardRef
	if len(c.RefPicks) > 0 {
		ref = pickWeightedRef(c.RefPicks, g.rnd())
	}
	return domain.Drop{
		RewardType: c.RewardType,
		RewardRef:  ref,
		Quantity:   g.randInt(c.MinQty, c.MaxQty),
		Rarity:     c.Rarity,
	}
}

// randInt draws uniformly from [min, max].
func (g *generator) randInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(g.rnd()*float64(max-min+1))
}

// pickWeighted draws r uniformly from [0, total weight) and walks the list
// subtracting each weight until the remainder goes non-positive. The last
// candidate is the fallback if floating-point drift leaves a remainder.
func pickWeighted(candidates []Candidate, rnd float64) Candidate {
	total := 0
	for _, c := range candidates {
		total += c.Weight
	}
	r := rnd * float64(total)
	for _, c := range candidates {
		r -= float64(c.Weight)
		if r <= 0 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func pickWeightedRef(picks []RefPick, rnd float64) string {
	total := 0
	for _, p := range picks {
		total += p.Weight
	}
	r := rnd * float64(total)
	for _, p := range picks {
		r -= float64(p.Weight)
		if r <= 0 {
			return p.Ref
		}
	}
	return picks[len(picks)-1].Ref
}
