package eventmail

// BookingRequest is a booking submission. Every field is optional; when
// Email is set the client also receives a confirmation.
type BookingRequest struct {
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	EventType       string `json:"eventType,omitempty"`
	CustomEventType string `json:"customEventType,omitempty"`
	EventDate       string `json:"eventDate,omitempty"`
	Guests          string `json:"guests,omitempty"`
	VenueLocation   string `json:"venueLocation,omitempty"`
	Budget          string `json:"budget,omitempty"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// BookingResponse is returned for an accepted booking.
type BookingResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id"`
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PreferredContact string `json:"preferredContact,omitempty"`
	Subject          string `json:"subject,omitempty"`
	Message          string `json:"message,omitempty"`
}

// ContactResponse is returned for an accepted contact message.
type ContactResponse struct {
	Message string `json:"message"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
