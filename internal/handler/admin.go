package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
)

// AdminGetPendingItems возвращает очередь вещей на модерацию.
func (h *Handler) AdminGetPendingItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetPendingItems(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(items))
}

type moderateItemRequest struct {
	ItemID string `json:"item_id"`
	Action string `json:"action"`
}

// AdminModerateItem применяет решение модератора approve/reject к вещи.
func (h *Handler) AdminModerateItem(w http.ResponseWriter, r *http.Request) {
	var req moderateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Action != "approve" && req.Action != "reject" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.ModerateItem(r.Context(), itemID, req.Action == "approve"); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AdminGetUsers возвращает список всех пользователей.
func (h *Handler) AdminGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type adminUserActionRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

// AdminUserAction применяет действие suspend/activate/promote/demote.
// Изменение ролей доступно только администратору.
func (h *Handler) AdminUserAction(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if role != model.RoleAdmin {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	var req adminUserActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.AdminUserAction(r.Context(), userID, req.Action); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AdminGetStats возвращает агрегированные счётчики платформы.
func (h *Handler) AdminGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetAdminStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// AdminGetSwaps возвращает все заявки на обмен.
func (h *Handler) AdminGetSwaps(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.service.GetAllSwaps(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]swapResponse, 0, len(swaps))
	for i := range swaps {
		resp = append(resp, toSwapResponse(&swaps[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}
