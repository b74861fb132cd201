package handler

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// BookingService is declared by hand and carried as JSON. Callers must use
// grpc.CallContentSubtype(JSONCodecName); BookingServiceClient does.
const (
	BookingServiceName = "shareit.booking.v1.BookingService"
	JSONCodecName      = "json"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type CreateBookingRequest struct {
	ItemID     int64     `json:"itemId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	RequestKey string    `json:"requestKey,omitempty"`
}

type ConfirmBookingRequest struct {
	BookingID int64 `json:"bookingId"`
	Approved  bool  `json:"approved"`
}

type GetBookingRequest struct {
	BookingID int64 `json:"bookingId"`
}

type ListBookingsRequest struct {
	State string `json:"state,omitempty"`
	Scope string `json:"scope,omitempty"` // "booker" (default) or "owner"
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

type BookingServiceServer interface {
	CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error)
	ConfirmBooking(context.Context, *ConfirmBookingRequest) (*BookingResponse, error)
	GetBooking(context.Context, *GetBookingRequest) (*BookingResponse, error)
	ListBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", BookingServiceServer.CreateBooking)},
		{MethodName: "ConfirmBooking", Handler: unaryHandler("ConfirmBooking", BookingServiceServer.ConfirmBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", BookingServiceServer.GetBooking)},
		{MethodName: "ListBookings", Handler: unaryHandler("ListBookings", BookingServiceServer.ListBookings)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + BookingServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BookingServiceClient calls the booking API over an existing connection.
type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func (c *BookingServiceClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	return out, c.invoke(ctx, "CreateBooking", in, out, opts)
}

func (c *BookingServiceClient) ConfirmBooking(ctx context.Context, in *ConfirmBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	return out, c.invoke(ctx, "ConfirmBooking", in, out, opts)
}

func (c *BookingServiceClient) GetBooking(ctx context.Context, in *GetBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	return out, c.invoke(ctx, "GetBooking", in, out, opts)
}

func (c *BookingServiceClient) ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	out := new(ListBookingsResponse)
	return out, c.invoke(ctx, "ListBookings", in, out, opts)
}

func (c *BookingServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+BookingServiceName+"/"+method, in, out, opts...)
}
