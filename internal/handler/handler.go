// Package handler содержит HTTP-обработчики API сервиса ReWear.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/service"
	"github.com/rewear/rewear/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, name, email, password string) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetPointHistory(ctx context.Context, userID uuid.UUID) (int64, []model.PointTransaction, error)

	CreateItem(ctx context.Context, userID uuid.UUID, p service.CreateItemParams) (*model.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	GetItemsByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error)
	BrowseItems(ctx context.Context, f repository.BrowseFilter) ([]model.Item, error)
	RemoveItem(ctx context.Context, itemID, actorID uuid.UUID, actorRole model.UserRole) error

	CreateSwapRequest(ctx context.Context, senderID uuid.UUID, p service.CreateSwapParams) (*model.SwapRequest, error)
	ApplySwapAction(ctx context.Context, swapID, actorID uuid.UUID, action model.SwapAction) (*model.SwapRequest, error)
	GetSwapsByUser(ctx context.Context, userID uuid.UUID) ([]model.SwapRequest, error)

	SendMessage(ctx context.Context, senderID uuid.UUID, p service.SendMessageParams) (uuid.UUID, error)
	GetMessages(ctx context.Context, userID uuid.UUID, f repository.MessageFilter) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, userID, fromUserID uuid.UUID) error

	ModerateItem(ctx context.Context, itemID uuid.UUID, approve bool) error
	GetPendingItems(ctx context.Context) ([]model.Item, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	AdminUserAction(ctx context.Context, userID uuid.UUID, action string) error
	GetAdminStats(ctx context.Context) (*model.AdminStats, error)
	GetAllSwaps(ctx context.Context) ([]model.SwapRequest, error)
}

// Handler реализует HTTP-обработчики API сервиса ReWear.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError переводит ошибки бизнес-логики в HTTP-статусы.
// Неожиданные ошибки логируются и отдаются как 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, validation.ErrInvalidInput),
		errors.Is(err, service.ErrSelfSwap),
		errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrUnknownAction),
		errors.Is(err, repository.ErrItemUnavailable),
		errors.Is(err, repository.ErrInvalidTransition):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, repository.ErrInsufficientPoints):
		status = http.StatusPaymentRequired
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUserSuspended):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrSwapNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrDuplicateSwapRequest):
		status = http.StatusConflict
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("uri", r.RequestURI))
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	Points   int64  `json:"points"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Bio:      u.Bio,
		Points:   u.Points,
		Role:     string(u.Role),
		Verified: u.Verified,
		Active:   u.Active,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.authMiddleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.Error("generate token error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и выдаёт JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.authMiddleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.Error("generate token error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// GetProfile возвращает профиль текущего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type pointTransactionResponse struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id,omitempty"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type pointsResponse struct {
	Balance      int64                      `json:"balance"`
	Transactions []pointTransactionResponse `json:"transactions"`
}

// GetPoints возвращает баланс и историю баллов текущего пользователя.
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, history, err := h.service.GetPointHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := pointsResponse{
		Balance:      balance,
		Transactions: make([]pointTransactionResponse, 0, len(history)),
	}
	for _, t := range history {
		tr := pointTransactionResponse{
			ID:          t.ID.String(),
			Amount:      t.Amount,
			Type:        string(t.Type),
			Description: t.Description,
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		}
		if t.ItemID != nil {
			tr.ItemID = t.ItemID.String()
		}
		resp.Transactions = append(resp.Transactions, tr)
	}

	writeJSON(w, http.StatusOK, resp)
}
