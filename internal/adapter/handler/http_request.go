package handler

import (
	"net/http"

	"github.com/rl1809/shareit/internal/core/domain"
)

func (h *HTTPHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req NewRequestRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.requestService.CreateRequest(r.Context(), userID, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *HTTPHandler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reqs, err := h.requestService.ListOwnRequests(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponses(reqs))
}

func (h *HTTPHandler) ListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reqs, err := h.requestService.ListOtherRequests(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponses(reqs))
}

func (h *HTTPHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.requestService.GetRequest(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

func toRequestResponses(reqs []domain.ItemRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toRequestResponse(&reqs[i]))
	}
	return out
}
