package webhook

import (
	"VLINKS-Backend/internal/domain"
	"strings"
)

// EventKind is the classified intent of a webhook.
type EventKind string

const (
	KindCreated   EventKind = "created"
	KindCancelled EventKind = "cancelled"
	KindCompleted EventKind = "completed"
	KindNoShow    EventKind = "no-show"
)

// Classify maps free-text event types onto a kind by substring. Anything
// unrecognised, including an empty type, is a creation event. No-show is
// checked before completed so "no_showed" is not read as "showed".
func Classify(eventType string) EventKind {
	t := strings.ToLower(eventType)
	switch {
	case strings.Contains(t, "cancelled"), strings.Contains(t, "canceled"):
		return KindCancelled
	case strings.Contains(t, "no-show"), strings.Contains(t, "noshow"), strings.Contains(t, "no_show"):
		return KindNoShow
	case strings.Contains(t, "completed"), strings.Contains(t, "showed"):
		return KindCompleted
	}
	return KindCreated
}

// IsTransition reports whether the kind only moves an existing booking.
func (k EventKind) IsTransition() bool {
	return k != KindCreated
}

// Status returns the booking status a transition moves to.
func (k EventKind) Status() domain.BookingStatus {
	switch k {
	case KindCancelled:
		return domain.BookingCancelled
	case KindCompleted:
		return domain.BookingCompleted
	case KindNoShow:
		return domain.BookingNoShow
	}
	return domain.BookingConfirmed
}
