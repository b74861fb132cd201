package domain

import (
	"time"
)

type Item struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64
}

// ItemPatch carries the fields of a partial item update; nil means unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Date is a calendar day. It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// AnnotatedItem is an item plus derived booking dates for display.
type AnnotatedItem struct {
	Item
	LastBooking *Date
	NextBooking *Date
	Comments    []Comment
}

type Comment struct {
	ID         int64
	Text       string
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Created    time.Time
}
