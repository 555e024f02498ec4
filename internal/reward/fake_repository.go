package reward

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/repository"
)

// FakeRepository is a stateful in-memory implementation of
// repository.Reward for testing. It enables integration-style unit tests of
// the service without a database. Transactions are not isolated: every
// write is visible immediately and Rollback is a no-op, which is fine for
// the single-goroutine tests this fake is built for.
type FakeRepository struct {
	mu            sync.Mutex
	accounts      map[string]*domain.Account
	wallets       map[string]int
	boxes         map[string]*fakeBox
	inventory     []domain.InventoryItem
	notifications []domain.Notification
	nextDropID    int64
	nextInvID     int64
	nextNoteID    int64
	nextSeq       int64
}

// fakeBox pairs a box with an insertion sequence so that boxes minted in
// the same batch (identical CreatedAt) still order deterministically.
type fakeBox struct {
	box domain.LootBox
	seq int64
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		accounts: make(map[string]*domain.Account),
		wallets:  make(map[string]int),
		boxes:    make(map[string]*fakeBox),
	}
}

func (f *FakeRepository) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *FakeRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.wallets[userID]
	if !ok {
		return nil, nil
	}
	return &domain.Wallet{UserID: userID, TokenBalance: balance}, nil
}

func (f *FakeRepository) CountPendingBoxes(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countPendingLocked(userID), nil
}

func (f *FakeRepository) ListPendingBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	boxes := f.sortedBoxesLocked(userID, func(b domain.LootBox) bool {
		return b.Status == domain.BoxPending
	}, false)
	if len(boxes) > limit {
		boxes = boxes[:limit]
	}
	return boxes, nil
}

func (f *FakeRepository) ListSettledBoxes(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	boxes := f.sortedBoxesLocked(userID, func(b domain.LootBox) bool {
		return b.Status != domain.BoxPending
	}, false)
	if len(boxes) > limit {
		boxes = boxes[:limit]
	}
	return boxes, nil
}

func (f *FakeRepository) ListInventory(ctx context.Context, userID string, limit int) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.InventoryItem
	for i := len(f.inventory) - 1; i >= 0 && len(items) < limit; i-- {
		if f.inventory[i].UserID == userID {
			items = append(items, f.inventory[i])
		}
	}
	return items, nil
}

func (f *FakeRepository) BeginTx(ctx context.Context) (repository.RewardTx, error) {
	return &fakeTx{repo: f}, nil
}

// Notifications returns a copy of every stored notification, for assertions.
func (f *FakeRepository) Notifications() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// Box returns a copy of the stored box, for assertions.
func (f *FakeRepository) Box(boxID string) (domain.LootBox, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.boxes[boxID]
	if !ok {
		return domain.LootBox{}, false
	}
	return rec.box, true
}

func (f *FakeRepository) countPendingLocked(userID string) int {
	count := 0
	for _, rec := range f.boxes {
		if rec.box.UserID == userID && rec.box.Status == domain.BoxPending {
			count++
		}
	}
	return count
}

// sortedBoxesLocked returns matching boxes ordered by CreatedAt, sequence
// breaking ties. ascending=true yields oldest first.
func (f *FakeRepository) sortedBoxesLocked(userID string, match func(domain.LootBox) bool, ascending bool) []domain.LootBox {
	var recs []*fakeBox
	for _, rec := range f.boxes {
		if rec.box.UserID == userID && match(rec.box) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		before := a.box.CreatedAt.Before(b.box.CreatedAt) ||
			(a.box.CreatedAt.Equal(b.box.CreatedAt) && a.seq < b.seq)
		if ascending {
			return before
		}
		return !before
	})
	boxes := make([]domain.LootBox, len(recs))
	for i, rec := range recs {
		boxes[i] = rec.box
	}
	return boxes
}

// fakeTx applies writes directly to the backing FakeRepository.
type fakeTx struct {
	repo *FakeRepository
}

func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

func (t *fakeTx) EnsureAccountForUpdate(ctx context.Context, userID string) (*domain.Account, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	account, ok := t.repo.accounts[userID]
	if !ok {
		now := time.Now()
		account = &domain.Account{
			UserID:           userID,
			XP:               0,
			GrantedUpToLevel: 1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		t.repo.accounts[userID] = account
	}
	copied := *account
	return &copied, nil
}

func (t *fakeTx) RaiseXP(ctx context.Context, userID string, xp int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if account, ok := t.repo.accounts[userID]; ok && xp > account.XP {
		account.XP = xp
	}
	return nil
}

func (t *fakeTx) AddXP(ctx context.Context, userID string, delta int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if account, ok := t.repo.accounts[userID]; ok {
		account.XP += delta
	}
	return nil
}

func (t *fakeTx) SetGrantedUpToLevel(ctx context.Context, userID string, level int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if account, ok := t.repo.accounts[userID]; ok && level > account.GrantedUpToLevel {
		account.GrantedUpToLevel = level
	}
	return nil
}

func (t *fakeTx) CountPendingBoxes(ctx context.Context, userID string) (int, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	return t.repo.countPendingLocked(userID), nil
}

func (t *fakeTx) InsertBoxes(ctx context.Context, boxes []domain.LootBox) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, box := range boxes {
		t.repo.nextSeq++
		t.repo.boxes[box.ID] = &fakeBox{box: box, seq: t.repo.nextSeq}
	}
	return nil
}

func (t *fakeTx) SelectPendingForUpdate(ctx context.Context, userID string, limit int) ([]domain.LootBox, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	boxes := t.repo.sortedBoxesLocked(userID, func(b domain.LootBox) bool {
		return b.Status == domain.BoxPending
	}, true)
	if len(boxes) > limit {
		boxes = boxes[:limit]
	}
	return boxes, nil
}

func (t *fakeTx) MarkOpened(ctx context.Context, boxID string, openedAt time.Time) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	rec, ok := t.repo.boxes[boxID]
	if !ok || rec.box.Status != domain.BoxPending {
		return domain.ErrInvalidStatus
	}
	rec.box.Status = domain.BoxOpened
	opened := openedAt
	rec.box.OpenedAt = &opened
	return nil
}

func (t *fakeTx) InsertDrops(ctx context.Context, boxID string, drops []domain.Drop) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	rec, ok := t.repo.boxes[boxID]
	if !ok {
		return domain.ErrBoxNotFound
	}
	for _, d := range drops {
		t.repo.nextDropID++
		d.ID = t.repo.nextDropID
		d.LootBoxID = boxID
		rec.box.Drops = append(rec.box.Drops, d)
	}
	return nil
}

func (t *fakeTx) SelectOpenedForUpdate(ctx context.Context, userID string, boxIDs []string) ([]domain.LootBox, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	requested := make(map[string]bool, len(boxIDs))
	for _, id := range boxIDs {
		requested[id] = true
	}
	boxes := t.repo.sortedBoxesLocked(userID, func(b domain.LootBox) bool {
		return requested[b.ID] && b.Status == domain.BoxOpened
	}, true)
	return boxes, nil
}

func (t *fakeTx) MarkClaimed(ctx context.Context, boxIDs []string, claimedAt time.Time) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, id := range boxIDs {
		rec, ok := t.repo.boxes[id]
		if !ok || rec.box.Status != domain.BoxOpened {
			continue
		}
		rec.box.Status = domain.BoxClaimed
		claimed := claimedAt
		rec.box.ClaimedAt = &claimed
	}
	return nil
}

func (t *fakeTx) AddTokens(ctx context.Context, userID string, delta int) (int, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	t.repo.wallets[userID] += delta
	return t.repo.wallets[userID], nil
}

func (t *fakeTx) InsertInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	t.repo.nextInvID++
	item.ID = t.repo.nextInvID
	t.repo.inventory = append(t.repo.inventory, item)
	return nil
}

func (t *fakeTx) InsertNotification(ctx context.Context, n domain.Notification) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	t.repo.nextNoteID++
	n.ID = t.repo.nextNoteID
	t.repo.notifications = append(t.repo.notifications, n)
	return nil
}

func (t *fakeTx) MarkNotificationsRead(ctx context.Context, userID, notificationType string, readAt time.Time) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for i := range t.repo.notifications {
		n := &t.repo.notifications[i]
		if n.UserID == userID && n.Type == notificationType && n.ReadAt == nil {
			read := readAt
			n.ReadAt = &read
		}
	}
	return nil
}
