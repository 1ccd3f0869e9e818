package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/service"
)

type messageResponse struct {
	ID            string `json:"id"`
	SenderID      string `json:"sender_id"`
	ReceiverID    string `json:"receiver_id"`
	SwapRequestID string `json:"swap_request_id,omitempty"`
	Content       string `json:"content"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

func toMessageResponse(m *model.Message) messageResponse {
	resp := messageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.SwapRequestID != nil {
		resp.SwapRequestID = m.SwapRequestID.String()
	}
	return resp
}

type sendMessageRequest struct {
	ReceiverID    string `json:"receiver_id"`
	Content       string `json:"content"`
	SwapRequestID string `json:"swap_request_id"`
}

// SendMessage отправляет сообщение от имени текущего пользователя.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	params := service.SendMessageParams{
		ReceiverID: receiverID,
		Content:    req.Content,
	}
	if req.SwapRequestID != "" {
		swapID, err := uuid.Parse(req.SwapRequestID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		params.SwapRequestID = &swapID
	}

	id, err := h.service.SendMessage(r.Context(), userID, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// GetMessages возвращает сообщения текущего пользователя.
// Поддерживаются фильтры по собеседнику и заявке на обмен.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var filter repository.MessageFilter
	q := r.URL.Query()

	if v := q.Get("conversationWith"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		filter.ConversationWith = &id
	}
	if v := q.Get("swapRequestId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		filter.SwapRequestID = &id
	}

	messages, err := h.service.GetMessages(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toMessageResponse(&messages[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type markReadRequest struct {
	FromUserID string `json:"from_user_id"`
}

// MarkMessagesRead помечает прочитанной переписку с указанным собеседником.
func (h *Handler) MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	fromUserID, err := uuid.Parse(req.FromUserID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.MarkConversationRead(r.Context(), userID, fromUserID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
