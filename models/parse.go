package models

import (
	"fmt"
	"strings"
	"time"

	"food-rescue-api/apperr"
)

// LocalDateTimeLayout is the wire form of every timestamp: ISO-8601 local
// date-time with no zone offset.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var localDateTimeInputs = []string{
	LocalDateTimeLayout, // fractional seconds are accepted by time.Parse as well
	"2006-01-02T15:04",
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ParseRole(s string) (Role, error) {
	switch r := Role(normalize(s)); r {
	case RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("role %q: %w", s, apperr.ErrInvalidFormat)
}

func ParseDonationStatus(s string) (DonationStatus, error) {
	switch st := DonationStatus(normalize(s)); st {
	case DonationPending, DonationAccepted, DonationPickedUp, DonationDelivered:
		return st, nil
	}
	return "", fmt.Errorf("donation status %q: %w", s, apperr.ErrInvalidFormat)
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(normalize(s)); st {
	case RequestOpen, RequestMatched, RequestFulfilled, RequestCancelled:
		return st, nil
	}
	return "", fmt.Errorf("request status %q: %w", s, apperr.ErrInvalidFormat)
}

// ParsePriority maps an empty string to MEDIUM, the column default. Any other
// unknown value is rejected.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityMedium, nil
	}
	switch p := Priority(normalize(s)); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("priority %q: %w", s, apperr.ErrInvalidFormat)
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(normalize(s)); st {
	case OrderPending, OrderConfirmed, OrderInTransit, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("order status %q: %w", s, apperr.ErrInvalidFormat)
}

// ParseLocalDateTime parses an ISO-8601 local date-time in the server's zone.
// Browser clients often send UTC instants ("...Z"); those are converted to
// local time.
func ParseLocalDateTime(s string) (time.Time, error) {
	if strings.HasSuffix(s, "Z") {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.In(time.Local), nil
		}
	}
	for _, layout := range localDateTimeInputs {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date-time %q: %w", s, apperr.ErrInvalidFormat)
}

// ParseOptionalLocalDateTime returns nil for an empty string.
func ParseOptionalLocalDateTime(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseLocalDateTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDeliveryDateTime combines a date (2006-01-02) and a time of day
// (15:04 or 15:04:05) into one local timestamp.
func ParseDeliveryDateTime(date, clock string) (time.Time, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return time.Time{}, fmt.Errorf("delivery date %q: %w", date, apperr.ErrInvalidFormat)
	}
	t, err := ParseLocalDateTime(date + "T" + clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("delivery time %q: %w", clock, apperr.ErrInvalidFormat)
	}
	return t, nil
}

// FormatLocal renders t in the wire form. The zero time renders as "".
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(LocalDateTimeLayout)
}

// FormatLocalPtr is FormatLocal for nullable columns.
func FormatLocalPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatLocal(*t)
	return &s
}
