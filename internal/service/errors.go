package service

import "fmt"

// Delivery stages, in send order
const (
	StageBusiness     = "business"
	StageConfirmation = "confirmation"
)

// TransportError is returned when the business notification could not be
// sent. Nothing was delivered.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send %s email: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PartialDeliveryError is returned when the business notification was sent
// but the confirmation to the submitter failed. The business message is not
// recalled.
type PartialDeliveryError struct {
	Delivered []string
	Err       error
}

func (e *PartialDeliveryError) Error() string {
	return fmt.Sprintf("business notified but confirmation email failed: %v", e.Err)
}

func (e *PartialDeliveryError) Unwrap() error {
	return e.Err
}
