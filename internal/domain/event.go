package domain

import (
	"strings"
	"time"
)

// EventKind is the closed set of gateway event types the reconciler knows.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentIntentCreated
	EventPaymentIntentSucceeded
	EventPaymentIntentFailed
	EventPaymentIntentCanceled
	EventPaymentIntentRequiresAction
	EventChargeRefunded
	EventChargeDisputeCreated
)

var eventKindTypes = map[EventKind]string{
	EventPaymentIntentCreated:        "payment_intent.created",
	EventPaymentIntentSucceeded:      "payment_intent.succeeded",
	EventPaymentIntentFailed:         "payment_intent.payment_failed",
	EventPaymentIntentCanceled:       "payment_intent.canceled",
	EventPaymentIntentRequiresAction: "payment_intent.requires_action",
	EventChargeRefunded:              "charge.refunded",
	EventChargeDisputeCreated:        "charge.dispute.created",
}

// ParseEventKind maps a gateway event type to its kind. Unrecognised types
// map to EventUnknown.
func ParseEventKind(eventType string) EventKind {
	for kind, t := range eventKindTypes {
		if t == eventType {
			return kind
		}
	}
	return EventUnknown
}

func (k EventKind) String() string {
	if t, ok := eventKindTypes[k]; ok {
		return t
	}
	return "unknown"
}

// MutatesEnrollment reports whether events of this kind change stored state.
func (k EventKind) MutatesEnrollment() bool {
	switch k {
	case EventPaymentIntentSucceeded,
		EventPaymentIntentFailed,
		EventPaymentIntentCanceled,
		EventChargeRefunded,
		EventChargeDisputeCreated:
		return true
	}
	return false
}

const (
	MetadataEnrollmentID = "enrollmentId"
	MetadataClassIDs     = "classIds"
	MetadataBookingDate  = "bookingDate"
	MetadataIsTrial      = "isTrial"

	bookingDateLayout = "2006-01-02"
)

// GatewayEvent is a verified gateway notification reduced to the fields
// reconciliation needs.
type GatewayEvent struct {
	ID              string
	Kind            EventKind
	Type            string
	CreatedAt       time.Time
	ObjectID        string
	PaymentIntentID string
	Metadata        map[string]string
	Amount          Money
}

func (e GatewayEvent) EnrollmentID() string {
	return strings.TrimSpace(e.Metadata[MetadataEnrollmentID])
}

// ClassIDs splits the comma separated class list, dropping blanks and
// repeats while keeping order.
func (e GatewayEvent) ClassIDs() []string {
	raw := e.Metadata[MetadataClassIDs]
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (e GatewayEvent) IsTrial() bool {
	return strings.EqualFold(strings.TrimSpace(e.Metadata[MetadataIsTrial]), "true")
}

// BookingDate returns the explicit booking date from metadata, if valid.
func (e GatewayEvent) BookingDate() (time.Time, bool) {
	raw := strings.TrimSpace(e.Metadata[MetadataBookingDate])
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(bookingDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
