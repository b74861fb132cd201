package handler

import (
	"net/http"

	"github.com/rl1809/shareit/internal/core/domain"
)

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req NewItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), userID, domain.Item{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(*item))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ItemPatchRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), userID, itemID, domain.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

// GetItem accepts anonymous viewers; the header only unlocks owner-only dates.
func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	viewerID, _ := actingUser(r)

	item, err := h.itemService.GetItem(r.Context(), itemID, viewerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnotatedItemResponse(item))
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.itemService.ListOwnerItems(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toAnnotatedItemResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.SearchItems(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req CommentRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.itemService.AddComment(r.Context(), itemID, userID, req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}
