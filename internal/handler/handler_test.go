package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/service"
)

type stubService struct {
	user    *model.User
	userErr error

	balance    int64
	history    []model.PointTransaction
	historyErr error

	item      *model.Item
	itemErr   error
	items     []model.Item
	itemsErr  error
	removeErr error

	createdSwap *model.SwapRequest
	createErr   error
	appliedSwap *model.SwapRequest
	applyErr    error
	swaps       []model.SwapRequest

	msgID       uuid.UUID
	msgErr      error
	messages    []model.Message
	markReadErr error

	moderateErr    error
	pendingItems   []model.Item
	users          []model.User
	adminActionErr error
	stats          *model.AdminStats
}

func (s *stubService) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) GetPointHistory(ctx context.Context, userID uuid.UUID) (int64, []model.PointTransaction, error) {
	return s.balance, s.history, s.historyErr
}

func (s *stubService) CreateItem(ctx context.Context, userID uuid.UUID, p service.CreateItemParams) (*model.Item, error) {
	return s.item, s.itemErr
}

func (s *stubService) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return s.item, s.itemErr
}

func (s *stubService) GetItemsByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error) {
	return s.items, s.itemsErr
}

func (s *stubService) BrowseItems(ctx context.Context, f repository.BrowseFilter) ([]model.Item, error) {
	return s.items, s.itemsErr
}

func (s *stubService) RemoveItem(ctx context.Context, itemID, actorID uuid.UUID, actorRole model.UserRole) error {
	return s.removeErr
}

func (s *stubService) CreateSwapRequest(ctx context.Context, senderID uuid.UUID, p service.CreateSwapParams) (*model.SwapRequest, error) {
	return s.createdSwap, s.createErr
}

func (s *stubService) ApplySwapAction(ctx context.Context, swapID, actorID uuid.UUID, action model.SwapAction) (*model.SwapRequest, error) {
	return s.appliedSwap, s.applyErr
}

func (s *stubService) GetSwapsByUser(ctx context.Context, userID uuid.UUID) ([]model.SwapRequest, error) {
	return s.swaps, nil
}

func (s *stubService) SendMessage(ctx context.Context, senderID uuid.UUID, p service.SendMessageParams) (uuid.UUID, error) {
	return s.msgID, s.msgErr
}

func (s *stubService) GetMessages(ctx context.Context, userID uuid.UUID, f repository.MessageFilter) ([]model.Message, error) {
	return s.messages, nil
}

func (s *stubService) MarkConversationRead(ctx context.Context, userID, fromUserID uuid.UUID) error {
	return s.markReadErr
}

func (s *stubService) ModerateItem(ctx context.Context, itemID uuid.UUID, approve bool) error {
	return s.moderateErr
}

func (s *stubService) GetPendingItems(ctx context.Context) ([]model.Item, error) {
	return s.pendingItems, nil
}

func (s *stubService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users, nil
}

func (s *stubService) AdminUserAction(ctx context.Context, userID uuid.UUID, action string) error {
	return s.adminActionErr
}

func (s *stubService) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	return s.stats, nil
}

func (s *stubService) GetAllSwaps(ctx context.Context) ([]model.SwapRequest, error) {
	return s.swaps, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth)
}

func bearerToken(t *testing.T, h *Handler, userID uuid.UUID, role model.UserRole) string {
	t.Helper()

	token, err := h.authMiddleware.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func testUser() *model.User {
	return &model.User{
		ID:     uuid.New(),
		Email:  "user@example.com",
		Name:   "User",
		Points: 100,
		Role:   model.RoleUser,
		Active: true,
	}
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{user: testUser()}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Name:     "User",
		Email:    "user@example.com",
		Password: "password123",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var resp authResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("token is empty")
	}
	if resp.User.Email != "user@example.com" {
		t.Fatalf("email = %q", resp.User.Email)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(registerRequest{Name: "User"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := &stubService{userErr: repository.ErrUserExists}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Name:     "User",
		Email:    "user@example.com",
		Password: "password123",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid credentials", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "suspended account", err: service.ErrUserSuspended, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{userErr: tt.err})

			body, _ := json.Marshal(loginRequest{
				Email:    "user@example.com",
				Password: "password123",
			})

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.SetupRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetProfile_RequiresToken(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetProfile_Success(t *testing.T) {
	user := testUser()
	h := newTestHandler(t, &stubService{user: user})

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var resp userResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != user.ID.String() {
		t.Fatalf("id = %q, want %q", resp.ID, user.ID)
	}
}

func TestGetPoints_Success(t *testing.T) {
	user := testUser()
	itemID := uuid.New()
	svc := &stubService{
		balance: 150,
		history: []model.PointTransaction{
			{ID: uuid.New(), Amount: 100, Type: model.PointTxBonus, Description: "welcome bonus", CreatedAt: time.Now()},
			{ID: uuid.New(), ItemID: &itemID, Amount: 50, Type: model.PointTxEarnedSwap, Description: "swap settlement", CreatedAt: time.Now()},
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/points", nil)
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp pointsResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Balance != 150 {
		t.Fatalf("balance = %d, want 150", resp.Balance)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("transactions length = %d, want 2", len(resp.Transactions))
	}
}

func TestCreateSwap_Success(t *testing.T) {
	user := testUser()
	itemID := uuid.New()
	svc := &stubService{
		createdSwap: &model.SwapRequest{
			ID:             uuid.New(),
			SenderID:       user.ID,
			ReceiverID:     uuid.New(),
			ReceiverItemID: itemID,
			Type:           model.SwapTypePoints,
			Status:         model.SwapStatusPending,
		},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(createSwapRequest{
		ReceiverItemID: itemID.String(),
		Type:           "POINTS",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/swaps", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var resp swapResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "PENDING" {
		t.Fatalf("status = %q, want PENDING", resp.Status)
	}
	if resp.SenderItemID != "" {
		t.Fatalf("points swap must not carry a sender item")
	}
}

func TestCreateSwap_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "insufficient points", err: repository.ErrInsufficientPoints, wantStatus: http.StatusPaymentRequired},
		{name: "duplicate request", err: repository.ErrDuplicateSwapRequest, wantStatus: http.StatusConflict},
		{name: "swap with yourself", err: service.ErrSelfSwap, wantStatus: http.StatusBadRequest},
		{name: "item unavailable", err: repository.ErrItemUnavailable, wantStatus: http.StatusBadRequest},
		{name: "item not found", err: repository.ErrItemNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser()
			h := newTestHandler(t, &stubService{createErr: tt.err})

			body, _ := json.Marshal(createSwapRequest{
				ReceiverItemID: uuid.NewString(),
				Type:           "POINTS",
			})

			req := httptest.NewRequest(http.MethodPost, "/api/swaps", bytes.NewReader(body))
			req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
			rec := httptest.NewRecorder()

			h.SetupRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdateSwap_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid transition", err: repository.ErrInvalidTransition, wantStatus: http.StatusBadRequest},
		{name: "unknown action", err: service.ErrUnknownAction, wantStatus: http.StatusBadRequest},
		{name: "not a participant", err: service.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "swap not found", err: repository.ErrSwapNotFound, wantStatus: http.StatusNotFound},
		{name: "insufficient points", err: repository.ErrInsufficientPoints, wantStatus: http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser()
			h := newTestHandler(t, &stubService{applyErr: tt.err})

			body, _ := json.Marshal(swapActionRequest{Action: "complete"})

			req := httptest.NewRequest(http.MethodPatch, "/api/swaps/"+uuid.NewString(), bytes.NewReader(body))
			req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
			rec := httptest.NewRecorder()

			h.SetupRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdateSwap_Success(t *testing.T) {
	user := testUser()
	swapID := uuid.New()
	svc := &stubService{
		appliedSwap: &model.SwapRequest{
			ID:             swapID,
			SenderID:       user.ID,
			ReceiverID:     uuid.New(),
			ReceiverItemID: uuid.New(),
			Type:           model.SwapTypeDirect,
			Status:         model.SwapStatusCompleted,
		},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(swapActionRequest{Action: "complete"})

	req := httptest.NewRequest(http.MethodPatch, "/api/swaps/"+swapID.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp swapResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "COMPLETED" {
		t.Fatalf("status = %q, want COMPLETED", resp.Status)
	}
}

func TestUpdateSwap_BadSwapID(t *testing.T) {
	user := testUser()
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(swapActionRequest{Action: "accept"})

	req := httptest.NewRequest(http.MethodPatch, "/api/swaps/not-a-uuid", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdminEndpoints_ForbiddenForRegularUser(t *testing.T) {
	user := testUser()
	h := newTestHandler(t, &stubService{stats: &model.AdminStats{}})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, model.RoleUser))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAdminStats_ForModerator(t *testing.T) {
	h := newTestHandler(t, &stubService{stats: &model.AdminStats{TotalUsers: 3, CompletedSwaps: 1}})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, h, uuid.New(), model.RoleModerator))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp model.AdminStats
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalUsers != 3 {
		t.Fatalf("total users = %d, want 3", resp.TotalUsers)
	}
}

func TestAdminUserAction_RequiresAdminRole(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(adminUserActionRequest{
		UserID: uuid.NewString(),
		Action: "promote",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, uuid.New(), model.RoleModerator))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAdminUserAction_AdminAllowed(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(adminUserActionRequest{
		UserID: uuid.NewString(),
		Action: "suspend",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, uuid.New(), model.RoleAdmin))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAdminModerateItem_BadAction(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(moderateItemRequest{
		ItemID: uuid.NewString(),
		Action: "burn",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/items", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, uuid.New(), model.RoleModerator))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBrowse_ReturnsItems(t *testing.T) {
	user := testUser()
	svc := &stubService{items: []model.Item{
		{ID: uuid.New(), UserID: uuid.New(), Title: "Denim jacket", Status: model.ItemStatusApproved, Available: true},
	}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/browse?category=outerwear", nil)
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var items []itemResponse
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Denim jacket" {
		t.Fatalf("unexpected browse response: %s", data)
	}
}

func TestSendMessage_Created(t *testing.T) {
	user := testUser()
	msgID := uuid.New()
	h := newTestHandler(t, &stubService{msgID: msgID})

	body, _ := json.Marshal(sendMessageRequest{
		ReceiverID: uuid.NewString(),
		Content:    "is this still available?",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, h, user.ID, user.Role))
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
