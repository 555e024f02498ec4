package reward

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/loot"
)

// scriptedRnd returns a rnd func that replays the given values in order,
// cycling when exhausted. With the default bronze table the pattern
// (0.0, 0.0, 0.99) yields one TOKENS drop of quantity 10 per open and
// (0.8, 0.0, 0.99) yields one XP_BOOST drop of quantity 50.
func scriptedRnd(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func intPtr(v int) *int { return &v }

// newTestService builds a service over the fake repository with a ticking
// test clock, so boxes minted by successive calls have distinct timestamps.
func newTestService(t *testing.T, rnd func() float64, bus event.Bus) (*service, *FakeRepository) {
	t.Helper()
	repo := NewFakeRepository()
	gen, err := loot.NewGenerator(nil, rnd)
	require.NoError(t, err)

	svc, ok := NewService(repo, gen, bus).(*service)
	require.True(t, ok)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, repo
}

func TestReportXP_MintsOnLevelCrossing(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	result, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.PendingCount)
	assert.Equal(t, 2, result.Level)
	assert.False(t, result.Skipped)

	notes := repo.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationLootEarned, notes[0].Type)
	assert.Equal(t, NotificationTitle, notes[0].Title)
	assert.Equal(t, fmt.Sprintf(NotificationBodySingle, 2, 1), notes[0].Body)
	assert.Nil(t, notes[0].ReadAt)
}

func TestReportXP_RepeatIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	first, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created)
	assert.True(t, second.Skipped)
	assert.Equal(t, 1, second.PendingCount)
	assert.Len(t, repo.Notifications(), 1)
}

func TestReportXP_MultiLevelJump(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	// 1499 XP is level 3: two crossed levels, two boxes, one notification.
	first, err := svc.ReportXP(ctx, "user-1", intPtr(1499), "")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 3, first.Level)
	assert.Len(t, repo.Notifications(), 1)

	second, err := svc.ReportXP(ctx, "user-1", intPtr(1500), "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Created)
	assert.Equal(t, 4, second.Level)
	assert.Equal(t, 3, second.PendingCount)
}

func TestReportXP_XPNeverLowered(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(1000), "")
	require.NoError(t, err)

	result, err := svc.ReportXP(ctx, "user-1", intPtr(400), "")
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 3, result.Level)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, history.Account)
	assert.Equal(t, 1000, history.Account.XP)
}

func TestReportXP_Validation(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "", intPtr(100), "")
	assert.ErrorIs(t, err, domain.ErrMissingUser)

	_, err = svc.ReportXP(ctx, "user-1", intPtr(-5), "")
	assert.ErrorIs(t, err, domain.ErrNegativeXP)
}

func TestReportXP_AbsentXPOnlyReportsPending(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(1000), "")
	require.NoError(t, err)

	result, err := svc.ReportXP(ctx, "user-1", nil, "")
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.PendingCount)
	assert.Equal(t, 3, result.Level)

	// The ledger is untouched and no extra notification is written.
	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, history.Account)
	assert.Equal(t, 1000, history.Account.XP)
	assert.Len(t, repo.Notifications(), 1)

	// Unknown users get an empty report rather than an error.
	empty, err := svc.ReportXP(ctx, "user-2", nil, "")
	require.NoError(t, err)
	assert.True(t, empty.Skipped)
	assert.Equal(t, 0, empty.PendingCount)
	assert.Equal(t, 0, empty.Level)
}

func TestOpen_OldestFirst(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	for _, xp := range []int{500, 1000, 1500} {
		_, err := svc.ReportXP(ctx, "user-1", intPtr(xp), "")
		require.NoError(t, err)
	}

	pending, err := repo.ListPendingBoxes(ctx, "user-1", PendingListLimit)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	opened, err := svc.Open(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, opened, 2)

	// Pending lists newest first, so the two oldest are the tail.
	assert.Equal(t, pending[2].ID, opened[0].BoxID)
	assert.Equal(t, pending[1].ID, opened[1].BoxID)

	left, err := repo.ListPendingBoxes(ctx, "user-1", PendingListLimit)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, pending[0].ID, left[0].ID)
}

func TestOpen_CountClampAndAll(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	// 6000 XP is level 13: twelve boxes in one mint.
	result, err := svc.ReportXP(ctx, "user-1", intPtr(6000), "")
	require.NoError(t, err)
	require.Equal(t, 12, result.Created)

	opened, err := svc.Open(ctx, "user-1", 99)
	require.NoError(t, err)
	assert.Len(t, opened, MaxOpenCount)

	rest, err := svc.Open(ctx, "user-1", OpenAll)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestOpen_Validation(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, "", 1)
	assert.ErrorIs(t, err, domain.ErrMissingUser)

	_, err = svc.Open(ctx, "user-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	opened, err := svc.Open(ctx, "user-1", 5)
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestClaim_SettlesTokensExactlyOnce(t *testing.T) {
	svc, repo := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)

	opened, err := svc.Open(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, opened, 1)
	require.Len(t, opened[0].Drops, 1)
	require.Equal(t, domain.RewardTokens, opened[0].Drops[0].RewardType)

	result, err := svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Claimed)
	assert.Equal(t, 10, result.TokensAdded)
	assert.Equal(t, 0, result.XPAdded)
	assert.Equal(t, 10, result.TokenBalance)

	box, ok := repo.Box(opened[0].BoxID)
	require.True(t, ok)
	assert.Equal(t, domain.BoxClaimed, box.Status)
	require.NotNil(t, box.ClaimedAt)

	notes := repo.Notifications()
	require.Len(t, notes, 1)
	assert.NotNil(t, notes[0].ReadAt)

	// Retrying the same claim settles nothing but still reports the balance.
	again, err := svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Claimed)
	assert.Equal(t, 0, again.TokensAdded)
	assert.Equal(t, 10, again.TokenBalance)
}

func TestClaim_XPBoostSettlesLedgerAndInventory(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.8, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)

	opened, err := svc.Open(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, opened, 1)
	require.Equal(t, domain.RewardXPBoost, opened[0].Drops[0].RewardType)

	result, err := svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)
	assert.Equal(t, 50, result.XPAdded)
	assert.Equal(t, 0, result.TokensAdded)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, history.Account)
	assert.Equal(t, 550, history.Account.XP)
	require.Len(t, history.Inventory, 1)
	assert.Equal(t, string(domain.RewardXPBoost), history.Inventory[0].ItemType)
	assert.Equal(t, 50, history.Inventory[0].Quantity)

	// The boosted XP does not re-mint the level already granted.
	report, err := svc.ReportXP(ctx, "user-1", intPtr(550), "")
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func TestClaim_SkipsUnclaimableBoxes(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "owner", intPtr(500), "")
	require.NoError(t, err)
	ownerOpened, err := svc.Open(ctx, "owner", 1)
	require.NoError(t, err)
	require.Len(t, ownerOpened, 1)

	_, err = svc.ReportXP(ctx, "other", intPtr(500), "")
	require.NoError(t, err)
	otherPending, err := svc.Pending(ctx, "other")
	require.NoError(t, err)
	require.Len(t, otherPending.Pending, 1)

	// A foreign opened box and an own pending box both settle nothing.
	result, err := svc.Claim(ctx, "other", []string{
		ownerOpened[0].BoxID,
		otherPending.Pending[0].BoxID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Claimed)
	assert.Equal(t, 0, result.TokenBalance)
}

func TestClaim_Validation(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.Claim(ctx, "", []string{"a"})
	assert.ErrorIs(t, err, domain.ErrMissingUser)

	_, err = svc.Claim(ctx, "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Claim(ctx, "user-1", []string{"not-a-uuid"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPending_NewestFirstWithBalance(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	for _, xp := range []int{500, 1000} {
		_, err := svc.ReportXP(ctx, "user-1", intPtr(xp), "")
		require.NoError(t, err)
	}

	result, err := svc.Pending(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, result.Pending, 2)
	assert.True(t, result.Pending[0].CreatedAt.After(result.Pending[1].CreatedAt))
	assert.Equal(t, 0, result.TokenBalance)

	// Settling a claim invalidates the cached balance immediately.
	opened, err := svc.Open(ctx, "user-1", 1)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)

	after, err := svc.Pending(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, after.TokenBalance)
	assert.Len(t, after.Pending, 1)
}

func TestHistory_UnknownUserIsEmpty(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)

	history, err := svc.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, history.Account)
	assert.Equal(t, 0, history.Wallet.TokenBalance)
	assert.Empty(t, history.Boxes)
	assert.Empty(t, history.Inventory)
}

func TestHistory_ShowsSettledBoxesWithDrops(t *testing.T) {
	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), nil)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(1000), "")
	require.NoError(t, err)

	opened, err := svc.Open(ctx, "user-1", 1)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, history.Account)
	assert.Equal(t, 3, history.Account.Level)

	// One box claimed, one still pending and therefore absent.
	require.Len(t, history.Boxes, 1)
	assert.Equal(t, domain.BoxClaimed, history.Boxes[0].Status)
	require.Len(t, history.Boxes[0].Drops, 1)
	assert.Equal(t, domain.RewardTokens, history.Boxes[0].Drops[0].RewardType)
}

func TestService_PublishesLifecycleEvents(t *testing.T) {
	bus := event.NewMemoryBus()
	var got []event.Type
	for _, typ := range []event.Type{event.LootBoxEarned, event.LootBoxOpened, event.LootBoxClaimed} {
		typ := typ
		bus.Subscribe(typ, func(ctx context.Context, e event.Event) error {
			got = append(got, typ)
			return nil
		})
	}

	svc, _ := newTestService(t, scriptedRnd(0.0, 0.0, 0.99), bus)
	ctx := context.Background()

	_, err := svc.ReportXP(ctx, "user-1", intPtr(500), "")
	require.NoError(t, err)
	opened, err := svc.Open(ctx, "user-1", 1)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, "user-1", []string{opened[0].BoxID})
	require.NoError(t, err)

	assert.Equal(t, []event.Type{event.LootBoxEarned, event.LootBoxOpened, event.LootBoxClaimed}, got)
}

func TestLevel(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1500, 4},
	}
	for _, tc := range cases {
		level, err := Level(tc.xp)
		require.NoError(t, err)
		assert.Equal(t, tc.level, level, "xp=%d", tc.xp)
	}

	_, err := Level(-1)
	assert.ErrorIs(t, err, domain.ErrNegativeXP)
}
