package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
)

// localTimestamp is the zone-less layout older clients send; it is read as UTC.
const localTimestamp = "2006-01-02T15:04:05"

type NewBookingRequest struct {
	ItemID int64     `json:"itemId" validate:"required,gt=0"`
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required,gtfield=Start"`
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as zone-less ones.
func (r *NewBookingRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID int64  `json:"itemId"`
		Start  string `json:"start"`
		End    string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseTimestamp(raw.Start)
	if err != nil {
		return err
	}
	end, err := parseTimestamp(raw.End)
	if err != nil {
		return err
	}
	r.ItemID, r.Start, r.End = raw.ItemID, start, end
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localTimestamp, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID int64 `json:"id"`
}

type BookingResponse struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Item   ItemRef   `json:"item"`
	Booker UserRef   `json:"booker"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: string(b.Status),
		Item:   ItemRef{ID: b.ItemID, Name: b.ItemName},
		Booker: UserRef{ID: b.BookerID},
	}
}

func toBookingResponses(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

type UserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type UserPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

type NewItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type ItemPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Available   *bool   `json:"available"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type ItemResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Available   bool              `json:"available"`
	OwnerID     int64             `json:"ownerId"`
	RequestID   *int64            `json:"requestId,omitempty"`
	LastBooking *domain.Date      `json:"lastBooking,omitempty"`
	NextBooking *domain.Date      `json:"nextBooking,omitempty"`
	Comments    []CommentResponse `json:"comments"`
}

func toItemResponse(it domain.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		OwnerID:     it.OwnerID,
		RequestID:   it.RequestID,
		Comments:    []CommentResponse{},
	}
}

func toAnnotatedItemResponse(ai *domain.AnnotatedItem) ItemResponse {
	resp := toItemResponse(ai.Item)
	resp.LastBooking = ai.LastBooking
	resp.NextBooking = ai.NextBooking
	resp.Comments = make([]CommentResponse, 0, len(ai.Comments))
	for i := range ai.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(&ai.Comments[i]))
	}
	return resp
}

func toCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: c.Created}
}

type NewRequestRequest struct {
	Description string `json:"description" validate:"required"`
}

type AnsweringItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"ownerId"`
}

type RequestResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	RequestorID int64           `json:"requestorId"`
	Created     time.Time       `json:"created"`
	Items       []AnsweringItem `json:"items"`
}

func toRequestResponse(r *domain.ItemRequest) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     r.Created,
		Items:       make([]AnsweringItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, AnsweringItem{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID})
	}
	return resp
}
