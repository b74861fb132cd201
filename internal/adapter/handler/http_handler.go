package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
)

// UserIDHeader identifies the acting user on every call that needs one.
const UserIDHeader = "X-Sharer-User-Id"

var (
	errMissingUser = domain.NewError(domain.ErrValidation, "missing or invalid "+UserIDHeader+" header")
	errBadBody     = domain.NewError(domain.ErrValidation, "invalid request body")
)

type HTTPHandler struct {
	bookingService *service.BookingService
	itemService    *service.ItemService
	userService    *service.UserService
	requestService *service.RequestService
	validate       *validator.Validate
	log            *zap.Logger
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func NewHTTPHandler(
	bookingService *service.BookingService,
	itemService *service.ItemService,
	userService *service.UserService,
	requestService *service.RequestService,
	log *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		bookingService: bookingService,
		itemService:    itemService,
		userService:    userService,
		requestService: requestService,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            log,
	}
}

// Routes wires every endpoint behind the tracing, request id and access log middleware.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /bookings", h.CreateBooking)
	mux.HandleFunc("PATCH /bookings/{id}", h.ConfirmBooking)
	mux.HandleFunc("GET /bookings/{id}", h.GetBooking)
	mux.HandleFunc("GET /bookings", h.ListBookings)
	mux.HandleFunc("GET /bookings/owner", h.ListOwnerBookings)

	mux.HandleFunc("POST /users", h.CreateUser)
	mux.HandleFunc("PATCH /users/{id}", h.UpdateUser)
	mux.HandleFunc("GET /users/{id}", h.GetUser)
	mux.HandleFunc("DELETE /users/{id}", h.DeleteUser)

	mux.HandleFunc("POST /items", h.CreateItem)
	mux.HandleFunc("PATCH /items/{id}", h.UpdateItem)
	mux.HandleFunc("GET /items/{id}", h.GetItem)
	mux.HandleFunc("GET /items", h.ListItems)
	mux.HandleFunc("GET /items/search", h.SearchItems)
	mux.HandleFunc("POST /items/{id}/comment", h.AddComment)

	mux.HandleFunc("POST /requests", h.CreateRequest)
	mux.HandleFunc("GET /requests", h.ListOwnRequests)
	mux.HandleFunc("GET /requests/all", h.ListOtherRequests)
	mux.HandleFunc("GET /requests/{id}", h.GetRequest)

	return withTracing(withRequestID(h.withAccessLog(mux)))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst and runs struct validation on it.
func (h *HTTPHandler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadBody
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.NewError(domain.ErrValidation, "%s", describeValidation(verrs))
		}
		return domain.NewError(domain.ErrValidation, "%s", err.Error())
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gtfield":
			parts = append(parts, fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param()))
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func actingUser(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingUser
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.ErrValidation, "invalid id %q", raw)
	}
	return id, nil
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: http.StatusText(status), Message: err.Error()}

	var pe *domain.ParseError
	if errors.As(err, &pe) {
		resp.Value = pe.Value
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		resp.Message = "internal error"
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
