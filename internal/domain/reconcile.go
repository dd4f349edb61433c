package domain

import (
	"fmt"
	"strings"
	"time"
)

// Write is one persistence effect produced by a transition.
type Write interface {
	isWrite()
}

type UpdateEnrollment struct {
	Enrollment *Enrollment
}

type CreateBooking struct {
	Booking *Booking
}

// CreatePayment leaves ReceiptNumber empty; the store assigns it.
type CreatePayment struct {
	Payment *Payment
}

type PublishEnrollmentChanged struct {
	RoutingKey string
	Event      EnrollmentChanged
}

func (UpdateEnrollment) isWrite()         {}
func (CreateBooking) isWrite()            {}
func (CreatePayment) isWrite()            {}
func (PublishEnrollmentChanged) isWrite() {}

// EnrollmentChanged is the message published after a transition commits.
type EnrollmentChanged struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	EnrollmentID  string    `json:"enrollment_id"`
	CustomerID    string    `json:"customer_id"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	BookingCount  int       `json:"booking_count"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Transition is the new enrollment state plus the writes that realise it,
// in the order they must be applied.
type Transition struct {
	Enrollment *Enrollment
	Writes     []Write
}

func (t Transition) Empty() bool {
	return len(t.Writes) == 0
}

// Plan computes the effect of ev on current. classes holds the resolved
// classes named in the event metadata; unresolved ids are simply absent.
// current is never modified.
func Plan(current *Enrollment, ev GatewayEvent, classes []Class, at time.Time) (Transition, error) {
	if !ev.Kind.MutatesEnrollment() {
		return Transition{}, nil
	}
	if current == nil {
		return Transition{}, NewMissingRequiredFieldError("enrollment")
	}

	next := current.Clone()
	var writes []Write

	switch ev.Kind {
	case EventPaymentIntentSucceeded:
		succeeded, err := planSucceeded(next, ev, classes, at)
		if err != nil {
			return Transition{}, err
		}
		writes = succeeded
	case EventPaymentIntentFailed:
		next.MarkFailed(at)
		writes = append(writes, UpdateEnrollment{Enrollment: next})
	case EventPaymentIntentCanceled:
		next.MarkCancelled(at)
		writes = append(writes, UpdateEnrollment{Enrollment: next})
	case EventChargeRefunded:
		next.MarkRefunded(at)
		writes = append(writes, UpdateEnrollment{Enrollment: next})
	case EventChargeDisputeCreated:
		next.MarkDisputed(at)
		writes = append(writes, UpdateEnrollment{Enrollment: next})
	}

	writes = append(writes, PublishEnrollmentChanged{
		RoutingKey: "enrollment." + string(next.PaymentStatus),
		Event:      changedEvent(next, ev, writes, at),
	})

	return Transition{Enrollment: next, Writes: writes}, nil
}

func planSucceeded(next *Enrollment, ev GatewayEvent, classes []Class, at time.Time) ([]Write, error) {
	intentID := ev.PaymentIntentID
	if intentID == "" {
		intentID = ev.ObjectID
	}
	if intentID == "" {
		return nil, NewMissingRequiredFieldError("payment intent ID")
	}

	next.MarkPaid(intentID, at)
	writes := []Write{UpdateEnrollment{Enrollment: next}}

	from := ev.CreatedAt
	if from.IsZero() {
		from = at
	}
	explicitDate, hasDate := ev.BookingDate()
	enrollmentID := next.ID

	names := make([]string, 0, len(classes))
	for _, class := range classes {
		date := class.NextOccurrence(from)
		if hasDate {
			date = explicitDate
		}

		booking, err := NewBooking(class, &enrollmentID, next.CustomerID, date, ev.IsTrial(), at)
		if err != nil {
			return nil, err
		}
		writes = append(writes, CreateBooking{Booking: booking})
		names = append(names, class.Name)
	}

	notes := fmt.Sprintf("Payment for enrollment %s", next.ID)
	if len(names) > 0 {
		notes += ": " + strings.Join(names, ", ")
	}

	payment, err := NewEnrollmentPayment(next.ID, ev.Amount, intentID, notes, at)
	if err != nil {
		return nil, err
	}
	writes = append(writes, CreatePayment{Payment: payment})

	return writes, nil
}

func changedEvent(next *Enrollment, ev GatewayEvent, writes []Write, at time.Time) EnrollmentChanged {
	out := EnrollmentChanged{
		EventID:       ev.ID,
		EventType:     ev.Kind.String(),
		EnrollmentID:  next.ID,
		CustomerID:    next.CustomerID,
		PaymentStatus: string(next.PaymentStatus),
		Status:        string(next.Status),
		OccurredAt:    at,
	}
	for _, w := range writes {
		switch w := w.(type) {
		case CreateBooking:
			out.BookingCount++
		case CreatePayment:
			out.AmountCents = w.Payment.AmountCents
			out.Currency = w.Payment.Currency
		}
	}
	return out
}
