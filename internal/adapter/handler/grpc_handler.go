package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
)

// UserIDMetadataKey carries the acting user on gRPC calls.
const UserIDMetadataKey = "x-sharer-user-id"

type GRPCHandler struct {
	bookingService *service.BookingService
}

func NewGRPCHandler(bookingService *service.BookingService) *GRPCHandler {
	return &GRPCHandler{bookingService: bookingService}
}

func (h *GRPCHandler) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	userID, err := metadataUser(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := h.bookingService.CreateBooking(ctx, domain.NewBooking{
		ItemID:     req.ItemID,
		BookerID:   userID,
		Start:      req.Start,
		End:        req.End,
		RequestKey: req.RequestKey,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (h *GRPCHandler) ConfirmBooking(ctx context.Context, req *ConfirmBookingRequest) (*BookingResponse, error) {
	userID, err := metadataUser(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := h.bookingService.ConfirmBooking(ctx, req.BookingID, userID, req.Approved)
	if err != nil {
		return nil, grpcError(err)
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (h *GRPCHandler) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	userID, err := metadataUser(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := h.bookingService.GetBooking(ctx, req.BookingID, userID)
	if err != nil {
		return nil, grpcError(err)
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (h *GRPCHandler) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	userID, err := metadataUser(ctx)
	if err != nil {
		return nil, err
	}
	state, err := domain.ParseBookingState(req.State)
	if err != nil {
		return nil, grpcError(err)
	}
	scope := domain.ScopeBooker
	if req.Scope != "" {
		scope = domain.BookingScope(req.Scope)
	}

	bookings, err := h.bookingService.ListBookings(ctx, state, userID, scope)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ListBookingsResponse{Bookings: toBookingResponses(bookings)}, nil
}

func metadataUser(ctx context.Context) (int64, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get(UserIDMetadataKey)
	if len(vals) == 0 {
		return 0, status.Error(codes.Unauthenticated, "missing "+UserIDMetadataKey+" metadata")
	}
	id, err := strconv.ParseInt(vals[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, status.Error(codes.Unauthenticated, "invalid "+UserIDMetadataKey+" metadata")
	}
	return id, nil
}

func grpcError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		code = codes.AlreadyExists
	case errors.Is(err, service.ErrAlreadyDecided):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrParse):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrForbidden):
		code = codes.PermissionDenied
	}
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

// UnaryLogger logs one line per call and the cause of internal failures.
func UnaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.Internal {
			log.Error("grpc request", append(fields, zap.Error(err))...)
		} else {
			log.Info("grpc request", fields...)
		}
		return resp, err
	}
}
