package domain

import "time"

// Booking reserves a customer's place in one class for an enrollment.
type Booking struct {
	ID           string
	ClassID      string
	EnrollmentID *string
	CustomerID   string
	BookingDate  time.Time
	Term         Term
	IsTrial      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBooking(class Class, enrollmentID *string, customerID string, date time.Time, isTrial bool, now time.Time) (*Booking, error) {
	if class.ID == "" {
		return nil, NewMissingRequiredFieldError("class ID")
	}
	if customerID == "" {
		return nil, NewMissingRequiredFieldError("customer ID")
	}

	return &Booking{
		ClassID:      class.ID,
		EnrollmentID: enrollmentID,
		CustomerID:   customerID,
		BookingDate:  date,
		Term:         class.Term,
		IsTrial:      isTrial,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Attendance records that a booked customer showed up to a class.
type Attendance struct {
	ID         string
	ClassID    string
	BookingID  string
	Attended   bool
	RecordedAt time.Time
}
