package handler

import (
	"net/http"

	"github.com/levelup-app/reward-engine/internal/logger"
	"github.com/levelup-app/reward-engine/internal/reward"
)

// RewardHandler exposes the reward engine over HTTP.
type RewardHandler struct {
	service reward.Service
}

func NewRewardHandler(service reward.Service) *RewardHandler {
	return &RewardHandler{service: service}
}

// ReportXPRequest is the body of the XP report endpoint. XPAfter is a
// pointer so an explicit zero survives decoding; leaving it out turns the
// call into a read-only pending-count report.
type ReportXPRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	XPAfter *int   `json:"xp_after"`
	Source  string `json:"source" validate:"omitempty,max=50"`
}

// HandleReportXP records a user's absolute XP total and mints loot boxes
// for newly crossed levels
// @Summary Report XP
// @Description Raises the user's XP to the reported total and mints one pending loot box per newly crossed level. Idempotent on repeated reports. Omitting xp_after only reports the current pending-box count.
// @Tags rewards
// @Accept json
// @Produce json
// @Param request body ReportXPRequest true "XP report"
// @Success 200 {object} reward.ReportXPResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rewards/xp [post]
func (h *RewardHandler) HandleReportXP(w http.ResponseWriter, r *http.Request) {
	var req ReportXPRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Report XP"); err != nil {
		return
	}

	result, err := h.service.ReportXP(r.Context(), req.UserID, req.XPAfter, req.Source)
	if err != nil {
		respondServiceError(w, r, "Report XP", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// OpenRequest is the body of the open endpoint. Set All to open every
// pending box; otherwise Count selects how many, defaulting to one.
type OpenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Count  int    `json:"count" validate:"omitempty,min=1"`
	All    bool   `json:"all"`
}

// OpenResponse lists the boxes opened by one call.
type OpenResponse struct {
	Opened []reward.OpenedBox `json:"opened"`
}

// HandleOpen opens pending loot boxes oldest first and rolls their drops
// @Summary Open loot boxes
// @Description Opens up to count pending boxes (oldest first) and returns the generated drops. Drops are previewed here and settle on claim.
// @Tags rewards
// @Accept json
// @Produce json
// @Param request body OpenRequest true "Open request"
// @Success 200 {object} OpenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rewards/open [post]
func (h *RewardHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Open loot boxes"); err != nil {
		return
	}

	count := req.Count
	if req.All {
		count = reward.OpenAll
	} else if count == 0 {
		count = 1
	}

	opened, err := h.service.Open(r.Context(), req.UserID, count)
	if err != nil {
		respondServiceError(w, r, "Open loot boxes", err)
		return
	}

	respondJSON(w, http.StatusOK, OpenResponse{Opened: opened})
}

// ClaimRequest is the body of the claim endpoint.
type ClaimRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	LootBoxIDs []string `json:"loot_box_ids" validate:"required,min=1,dive,uuid4"`
}

// HandleClaim settles opened loot boxes into the user's wallet and inventory
// @Summary Claim loot boxes
// @Description Settles the drops of the named opened boxes: tokens into the wallet, everything else into the inventory ledger. Boxes that are not claimable are skipped.
// @Tags rewards
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Claim request"
// @Success 200 {object} reward.ClaimResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rewards/claim [post]
func (h *RewardHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Claim loot boxes"); err != nil {
		return
	}

	result, err := h.service.Claim(r.Context(), req.UserID, req.LootBoxIDs)
	if err != nil {
		respondServiceError(w, r, "Claim loot boxes", err)
		return
	}

	logger.FromContext(r.Context()).Debug("Claim settled",
		"user_id", req.UserID,
		"claimed", result.Claimed,
	)
	respondJSON(w, http.StatusOK, result)
}

// HandlePending lists a user's unopened loot boxes
// @Summary Pending loot boxes
// @Description Lists the user's pending boxes newest first, with the current token balance.
// @Tags rewards
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} reward.PendingResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rewards/pending [get]
func (h *RewardHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	result, err := h.service.Pending(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "List pending loot boxes", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleHistory returns a user's reward history
// @Summary Reward history
// @Description Returns the account view, wallet, settled boxes with their drops, and the inventory ledger.
// @Tags rewards
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} reward.HistoryResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rewards/history [get]
func (h *RewardHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	result, err := h.service.History(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "Load reward history", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
