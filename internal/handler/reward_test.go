package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/reward"
)

// MockRewardService is a hand-written testify mock of reward.Service.
type MockRewardService struct {
	mock.Mock
}

func (m *MockRewardService) ReportXP(ctx context.Context, userID string, xpAfter *int, source string) (*reward.ReportXPResult, error) {
	args := m.Called(ctx, userID, xpAfter, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.ReportXPResult), args.Error(1)
}

func (m *MockRewardService) Open(ctx context.Context, userID string, count int) ([]reward.OpenedBox, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reward.OpenedBox), args.Error(1)
}

func (m *MockRewardService) Claim(ctx context.Context, userID string, boxIDs []string) (*reward.ClaimResult, error) {
	args := m.Called(ctx, userID, boxIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.ClaimResult), args.Error(1)
}

func (m *MockRewardService) Pending(ctx context.Context, userID string) (*reward.PendingResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.PendingResult), args.Error(1)
}

func (m *MockRewardService) History(ctx context.Context, userID string) (*reward.HistoryResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.HistoryResult), args.Error(1)
}

func TestHandleReportXP(t *testing.T) {
	xp := 500
	tests := []struct {
		name           string
		reqBody        interface{}
		setupMock      func(*MockRewardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Invalid JSON",
			reqBody:        "invalid json",
			setupMock:      func(m *MockRewardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:    "Absent XP Reports Pending",
			reqBody: map[string]interface{}{"user_id": "user-1"},
			setupMock: func(m *MockRewardService) {
				m.On("ReportXP", mock.Anything, "user-1", (*int)(nil), "").Return(&reward.ReportXPResult{
					PendingCount: 3,
					Skipped:      true,
					Level:        2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"skipped":true`,
		},
		{
			name:    "Negative XP",
			reqBody: ReportXPRequest{UserID: "user-1", XPAfter: intPtr(-1)},
			setupMock: func(m *MockRewardService) {
				m.On("ReportXP", mock.Anything, "user-1", mock.Anything, "").Return(nil, domain.ErrNegativeXP)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgNegativeXPError,
		},
		{
			name:    "Success",
			reqBody: ReportXPRequest{UserID: "user-1", XPAfter: &xp},
			setupMock: func(m *MockRewardService) {
				m.On("ReportXP", mock.Anything, "user-1", &xp, "").Return(&reward.ReportXPResult{
					Created:      1,
					PendingCount: 1,
					Level:        2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"created":1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockRewardService{}
			tt.setupMock(mockSvc)
			h := NewRewardHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/rewards/xp", encodeBody(t, tt.reqBody))
			rec := httptest.NewRecorder()
			h.HandleReportXP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestHandleOpen(t *testing.T) {
	tests := []struct {
		name           string
		reqBody        interface{}
		setupMock      func(*MockRewardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "Defaults To One",
			reqBody: OpenRequest{UserID: "user-1"},
			setupMock: func(m *MockRewardService) {
				m.On("Open", mock.Anything, "user-1", 1).Return([]reward.OpenedBox{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"opened":[]`,
		},
		{
			name:    "All",
			reqBody: OpenRequest{UserID: "user-1", All: true},
			setupMock: func(m *MockRewardService) {
				m.On("Open", mock.Anything, "user-1", reward.OpenAll).Return([]reward.OpenedBox{
					{BoxID: "box-1", Tier: domain.TierBronze, Drops: []domain.Drop{{RewardType: domain.RewardTokens, Quantity: 12, Rarity: "common"}}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"tier":"BRONZE"`,
		},
		{
			name:           "Missing User",
			reqBody:        OpenRequest{Count: 3},
			setupMock:      func(m *MockRewardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "userid is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockRewardService{}
			tt.setupMock(mockSvc)
			h := NewRewardHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/rewards/open", encodeBody(t, tt.reqBody))
			rec := httptest.NewRecorder()
			h.HandleOpen(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestHandleClaim(t *testing.T) {
	boxID := "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	tests := []struct {
		name           string
		reqBody        interface{}
		setupMock      func(*MockRewardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Empty IDs",
			reqBody:        ClaimRequest{UserID: "user-1", LootBoxIDs: []string{}},
			setupMock:      func(m *MockRewardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
		{
			name:           "Malformed ID",
			reqBody:        ClaimRequest{UserID: "user-1", LootBoxIDs: []string{"not-a-uuid"}},
			setupMock:      func(m *MockRewardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
		{
			name:    "Success",
			reqBody: ClaimRequest{UserID: "user-1", LootBoxIDs: []string{boxID}},
			setupMock: func(m *MockRewardService) {
				m.On("Claim", mock.Anything, "user-1", []string{boxID}).Return(&reward.ClaimResult{
					Claimed:      1,
					TokensAdded:  10,
					TokenBalance: 10,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token_balance":10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockRewardService{}
			tt.setupMock(mockSvc)
			h := NewRewardHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/rewards/claim", encodeBody(t, tt.reqBody))
			rec := httptest.NewRecorder()
			h.HandleClaim(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestHandlePending(t *testing.T) {
	t.Run("Missing user_id", func(t *testing.T) {
		h := NewRewardHandler(&MockRewardService{})
		req := httptest.NewRequest(http.MethodGet, "/rewards/pending", nil)
		rec := httptest.NewRecorder()
		h.HandlePending(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		mockSvc := &MockRewardService{}
		mockSvc.On("Pending", mock.Anything, "user-1").Return(&reward.PendingResult{
			Pending:      []reward.PendingBox{{BoxID: "box-1", Tier: domain.TierBronze}},
			TokenBalance: 42,
		}, nil)
		h := NewRewardHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/rewards/pending?user_id=user-1", nil)
		rec := httptest.NewRecorder()
		h.HandlePending(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token_balance":42`)
		mockSvc.AssertExpectations(t)
	})
}

func TestHandleHistory(t *testing.T) {
	mockSvc := &MockRewardService{}
	mockSvc.On("History", mock.Anything, "user-1").Return(&reward.HistoryResult{
		Account: &reward.AccountInfo{UserID: "user-1", XP: 1000, Level: 3},
		Wallet:  domain.Wallet{UserID: "user-1", TokenBalance: 25},
	}, nil)
	h := NewRewardHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/rewards/history?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level":3`)
	mockSvc.AssertExpectations(t)
}

func intPtr(v int) *int { return &v }

func encodeBody(t *testing.T, body interface{}) *bytes.Buffer {
	t.Helper()
	if s, ok := body.(string); ok {
		return bytes.NewBufferString(s)
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	return buf
}
