package handler

import (
	"net/http"
	"strconv"

	"github.com/rl1809/shareit/internal/core/domain"
)

// IdempotencyKeyHeader makes POST /bookings safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

func (h *HTTPHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req NewBookingRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), domain.NewBooking{
		ItemID:     req.ItemID,
		BookerID:   userID,
		Start:      req.Start,
		End:        req.End,
		RequestKey: r.Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *HTTPHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		h.writeError(w, r, &domain.ParseError{Field: "approved", Value: r.URL.Query().Get("approved")})
		return
	}

	booking, err := h.bookingService.ConfirmBooking(r.Context(), bookingID, userID, approved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *HTTPHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookingService.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *HTTPHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, domain.ScopeBooker)
}

func (h *HTTPHandler) ListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, domain.ScopeOwner)
}

func (h *HTTPHandler) listBookings(w http.ResponseWriter, r *http.Request, scope domain.BookingScope) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	state, err := domain.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bookings, err := h.bookingService.ListBookings(r.Context(), state, userID, scope)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}
