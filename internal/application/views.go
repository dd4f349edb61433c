package application

import (
	"time"

	"github.com/DanielPopoola/classbook/internal/domain"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps client supplied paging values.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// BookingView is a booking joined with the names shown next to it.
type BookingView struct {
	domain.Booking
	ClassName      string
	InstructorName string
	CustomerName   string
}

type ClassDetail struct {
	Class      *domain.Class
	Instructor *domain.Instructor
	Bookings   []BookingView
}

// CustomerProfile is the profile tab of the customer detail view.
type CustomerProfile struct {
	Customer *domain.Customer
	User     *domain.User
}

type CustomerDetail struct {
	Profile  CustomerProfile
	Bookings []BookingView
	Payments []*domain.Payment
}

type BookingDetail struct {
	Booking    *domain.Booking
	Enrollment *domain.Enrollment
	Class      *domain.Class
	Payments   []*domain.Payment
}

// OutboxMessage is an event waiting to be relayed to the broker.
type OutboxMessage struct {
	ID          string
	AggregateID string
	RoutingKey  string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
