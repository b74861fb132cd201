package domain

import "time"

type User struct {
	ID    int64
	Name  string
	Email string
}

type UserPatch struct {
	Name  *string
	Email *string
}

type ItemRequest struct {
	ID          int64
	Description string
	RequestorID int64
	Created     time.Time
	Items       []Item // items created in answer to the request
}
