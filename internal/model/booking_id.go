package model

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// BookingIDPrefix starts every booking identifier
const BookingIDPrefix = "BK"

var bookingIDPattern = regexp.MustCompile(`^BK[0-9A-Z]{8}$`)

// NewBookingID returns "BK" followed by the first 8 characters of a random
// UUID, uppercased. Identifiers are not stored, so uniqueness is statistical.
func NewBookingID() string {
	return BookingIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

// IsBookingID reports whether s has the shape of a booking identifier
func IsBookingID(s string) bool {
	return bookingIDPattern.MatchString(s)
}
