package reward

import (
	"context"

	"github.com/levelup-app/reward-engine/internal/domain"
)

// Pending lists the user's unopened boxes, newest first, alongside their
// token balance. The balance may be served from a short-lived cache; claims
// invalidate it so a settled balance is visible immediately.
func (s *service) Pending(ctx context.Context, userID string) (*PendingResult, error) {
	if !validUserID(userID) {
		return nil, domain.ErrMissingUser
	}

	boxes, err := s.repo.ListPendingBoxes(ctx, userID, PendingListLimit)
	if err != nil {
		return nil, err
	}

	pending := make([]PendingBox, 0, len(boxes))
	for _, box := range boxes {
		pending = append(pending, PendingBox{
			BoxID:     box.ID,
			Tier:      box.Tier,
			CreatedAt: box.CreatedAt,
		})
	}

	balance, ok := s.cache.Get(userID)
	if !ok {
		balance, err = s.walletBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(userID, balance)
	}

	return &PendingResult{
		Pending:      pending,
		TokenBalance: balance,
	}, nil
}

// History returns the account view plus settled boxes (with drops) and the
// inventory ledger, newest first. An unknown user gets an empty history
// rather than an error.
func (s *service) History(ctx context.Context, userID string) (*HistoryResult, error) {
	if !validUserID(userID) {
		return nil, domain.ErrMissingUser
	}

	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var info *AccountInfo
	if account != nil {
		level, err := Level(account.XP)
		if err != nil {
			return nil, err
		}
		info = &AccountInfo{
			UserID: account.UserID,
			XP:     account.XP,
			Level:  level,
		}
	}

	balance, err := s.walletBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	boxes, err := s.repo.ListSettledBoxes(ctx, userID, HistoryBoxLimit)
	if err != nil {
		return nil, err
	}

	inventory, err := s.repo.ListInventory(ctx, userID, HistoryInventoryLimit)
	if err != nil {
		return nil, err
	}

	return &HistoryResult{
		Account:   info,
		Wallet:    domain.Wallet{UserID: userID, TokenBalance: balance},
		Boxes:     boxes,
		Inventory: inventory,
	}, nil
}
