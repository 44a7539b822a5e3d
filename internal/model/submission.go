package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OtherEventType is the eventType value that defers to customEventType
const OtherEventType = "other"

// DefaultCustomEventType is rendered when eventType is "other" and no
// customEventType was given
const DefaultCustomEventType = "Other"

// Submission kinds
const (
	KindBooking = "booking"
	KindContact = "contact"
)

// Text is an optional free-text field. Frontends are not consistent about
// types, so JSON numbers and booleans are accepted and kept as their
// literal text; null becomes empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("expected text, got %s", jsonKind(data[0]))
	default:
		// number or boolean literal
		*t = Text(data)
	}
	return nil
}

func jsonKind(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// String returns the field as a plain string
func (t Text) String() string {
	return string(t)
}

// BookingRequest is a booking submission from the website
type BookingRequest struct {
	Name            Text `json:"name" validate:"max=200"`
	Phone           Text `json:"phone" validate:"max=50"`
	Email           Text `json:"email" validate:"omitempty,email,max=200"`
	EventType       Text `json:"eventType" validate:"max=200"`
	CustomEventType Text `json:"customEventType" validate:"max=200"`
	EventDate       Text `json:"eventDate" validate:"max=200"`
	Guests          Text `json:"guests" validate:"max=200"`
	VenueLocation   Text `json:"venueLocation" validate:"max=200"`
	Budget          Text `json:"budget" validate:"max=200"`
	SpecialRequests Text `json:"specialRequests" validate:"max=5000"`
}

// Normalize trims surrounding whitespace from every field
func (b *BookingRequest) Normalize() {
	for _, f := range []*Text{
		&b.Name, &b.Phone, &b.Email, &b.EventType, &b.CustomEventType,
		&b.EventDate, &b.Guests, &b.VenueLocation, &b.Budget, &b.SpecialRequests,
	} {
		*f = Text(strings.TrimSpace(string(*f)))
	}
}

// DisplayEventType resolves "other" against the free-text custom event type
func (b BookingRequest) DisplayEventType() string {
	if string(b.EventType) != OtherEventType {
		return string(b.EventType)
	}
	if b.CustomEventType != "" {
		return string(b.CustomEventType)
	}
	return DefaultCustomEventType
}

// ContactRequest is a contact form submission from the website
type ContactRequest struct {
	Name             Text `json:"name" validate:"max=200"`
	Email            Text `json:"email" validate:"omitempty,email,max=200"`
	Phone            Text `json:"phone" validate:"max=50"`
	PreferredContact Text `json:"preferredContact" validate:"max=200"`
	Subject          Text `json:"subject" validate:"max=200"`
	Message          Text `json:"message" validate:"max=5000"`
}

// Normalize trims surrounding whitespace from every field
func (c *ContactRequest) Normalize() {
	for _, f := range []*Text{
		&c.Name, &c.Email, &c.Phone, &c.PreferredContact, &c.Subject, &c.Message,
	} {
		*f = Text(strings.TrimSpace(string(*f)))
	}
}
