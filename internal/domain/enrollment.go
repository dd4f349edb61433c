// Package domain holds the enrollment, booking and payment model and the
// pure state transitions driven by payment gateway events.
package domain

import "time"

// PaymentStatus is the enrollment's view of its gateway payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentDisputed  PaymentStatus = "disputed"
)

// EnrollmentStatus is the lifecycle status of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment is one purchase intent covering one or more class bookings.
// It is created at checkout and afterwards only changed by gateway events.
type Enrollment struct {
	ID             string
	CustomerID     string
	EnrollmentType string
	PaymentStatus  PaymentStatus
	Status         EnrollmentStatus
	PaymentIntent  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewEnrollment(id, customerID, enrollmentType string, now time.Time) (*Enrollment, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("enrollment ID")
	}
	if customerID == "" {
		return nil, NewMissingRequiredFieldError("customer ID")
	}
	if enrollmentType == "" {
		enrollmentType = "standard"
	}

	return &Enrollment{
		ID:             id,
		CustomerID:     customerID,
		EnrollmentType: enrollmentType,
		PaymentStatus:  PaymentPending,
		Status:         EnrollmentActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Clone returns a copy so transitions never mutate the caller's value.
func (e *Enrollment) Clone() *Enrollment {
	c := *e
	if e.PaymentIntent != nil {
		intent := *e.PaymentIntent
		c.PaymentIntent = &intent
	}
	return &c
}

func (e *Enrollment) MarkPaid(paymentIntentID string, at time.Time) {
	e.PaymentStatus = PaymentPaid
	e.Status = EnrollmentActive
	e.PaymentIntent = &paymentIntentID
	e.UpdatedAt = at
}

func (e *Enrollment) MarkFailed(at time.Time) {
	e.cancelWith(PaymentFailed, at)
}

func (e *Enrollment) MarkCancelled(at time.Time) {
	e.cancelWith(PaymentCancelled, at)
}

func (e *Enrollment) MarkRefunded(at time.Time) {
	e.cancelWith(PaymentRefunded, at)
}

// MarkDisputed leaves the lifecycle status alone; a dispute may still be won.
func (e *Enrollment) MarkDisputed(at time.Time) {
	e.PaymentStatus = PaymentDisputed
	e.UpdatedAt = at
}

func (e *Enrollment) cancelWith(status PaymentStatus, at time.Time) {
	e.PaymentStatus = status
	e.Status = EnrollmentCancelled
	e.UpdatedAt = at
}
