package reward

import (
	"fmt"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// Level derives the discrete level from an XP total. XP must be
// non-negative; it is rejected, not clamped.
func Level(xp int) (int, error) {
	if xp < 0 {
		return 0, fmt.Errorf("%w: %d", domain.ErrNegativeXP, xp)
	}
	return xp/LevelSpan + 1, nil
}
