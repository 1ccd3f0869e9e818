package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/service"
)

type swapResponse struct {
	ID             string `json:"id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id"`
	SenderItemID   string `json:"sender_item_id,omitempty"`
	ReceiverItemID string `json:"receiver_item_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toSwapResponse(s *model.SwapRequest) swapResponse {
	resp := swapResponse{
		ID:             s.ID.String(),
		SenderID:       s.SenderID.String(),
		ReceiverID:     s.ReceiverID.String(),
		ReceiverItemID: s.ReceiverItemID.String(),
		Type:           string(s.Type),
		Status:         string(s.Status),
		Message:        s.Message,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
	if s.SenderItemID != nil {
		resp.SenderItemID = s.SenderItemID.String()
	}
	return resp
}

type createSwapRequest struct {
	ReceiverItemID string `json:"receiver_item_id"`
	SenderItemID   string `json:"sender_item_id"`
	Type           string `json:"type"`
	Message        string `json:"message"`
}

// CreateSwap создаёт новую заявку на обмен от имени текущего пользователя.
func (h *Handler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req createSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	receiverItemID, err := uuid.Parse(req.ReceiverItemID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	params := service.CreateSwapParams{
		ReceiverItemID: receiverItemID,
		Type:           model.SwapType(req.Type),
		Message:        req.Message,
	}

	if req.SenderItemID != "" {
		senderItemID, err := uuid.Parse(req.SenderItemID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		params.SenderItemID = &senderItemID
	}

	swap, err := h.service.CreateSwapRequest(r.Context(), userID, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSwapResponse(swap))
}

// GetSwaps возвращает входящие и исходящие заявки текущего пользователя.
func (h *Handler) GetSwaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	swaps, err := h.service.GetSwapsByUser(r.Context(), userID)
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

type swapActionRequest struct {
	Action string `json:"action"`
}

// UpdateSwap применяет действие accept/reject/complete/cancel к заявке.
func (h *Handler) UpdateSwap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	swapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req swapActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	swap, err := h.service.ApplySwapAction(r.Context(), swapID, userID, model.SwapAction(req.Action))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSwapResponse(swap))
}
