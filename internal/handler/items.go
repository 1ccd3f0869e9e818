package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/middleware"
	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/service"
)

type itemResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Brand       string   `json:"brand,omitempty"`
	Color       string   `json:"color,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	PointValue  int64    `json:"point_value"`
	Status      string   `json:"status"`
	Available   bool     `json:"available"`
	CreatedAt   string   `json:"created_at"`
}

func toItemResponse(it *model.Item) itemResponse {
	return itemResponse{
		ID:          it.ID.String(),
		UserID:      it.UserID.String(),
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		Size:        it.Size,
		Condition:   it.Condition,
		Brand:       it.Brand,
		Color:       it.Color,
		Tags:        it.Tags,
		PointValue:  it.PointValue,
		Status:      string(it.Status),
		Available:   it.Available,
		CreatedAt:   it.CreatedAt.Format(time.RFC3339),
	}
}

func toItemResponses(items []model.Item) []itemResponse {
	resp := make([]itemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResponse(&items[i]))
	}
	return resp
}

type createItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Brand       string   `json:"brand"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`
	PointValue  int64    `json:"point_value"`
}

// CreateItem публикует новую вещь от имени текущего пользователя.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	item, err := h.service.CreateItem(r.Context(), userID, service.CreateItemParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Brand:       req.Brand,
		Color:       req.Color,
		Tags:        req.Tags,
		PointValue:  req.PointValue,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// GetItem возвращает вещь по идентификатору.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// GetItems возвращает вещи указанного пользователя либо текущего.
func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if v := r.URL.Query().Get("userId"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		userID = parsed
	}

	items, err := h.service.GetItemsByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// DeleteItem снимает вещь с публикации.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveItem(r.Context(), id, userID, role); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Browse возвращает каталог одобренных вещей с учётом фильтров запроса.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, err := h.service.BrowseItems(r.Context(), repository.BrowseFilter{
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
		Size:      q.Get("size"),
		Search:    q.Get("search"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(items))
}
