package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/email"
	"github.com/bristoevents/eventmail/internal/events"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/metrics"
	"github.com/bristoevents/eventmail/internal/model"
)

const publishTimeout = 5 * time.Second

// BookingResult is the outcome of SubmitBooking
type BookingResult struct {
	BookingID string
	Delivered []string
}

// ContactResult is the outcome of SubmitContact
type ContactResult struct {
	Delivered []string
}

// SubmissionService formats submissions into emails and dispatches them:
// one notification to the business inbox, then a confirmation to the
// submitter when an email address was given.
type SubmissionService struct {
	sender        email.Sender
	publisher     events.Publisher
	business      email.Business
	businessEmail string
	newBookingID  func() string
	log           *logger.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(sender email.Sender, publisher events.Publisher, biz config.BusinessConfig, log *logger.Logger) *SubmissionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SubmissionService{
		sender:    sender,
		publisher: publisher,
		business: email.Business{
			Name:    biz.Name,
			Phone:   biz.Phone,
			Website: biz.Website,
		},
		businessEmail: biz.Email,
		newBookingID:  model.NewBookingID,
		log:           log.WithComponent("submission"),
	}
}

// SubmitBooking notifies the business of a booking and confirms it to the
// client. The result is returned even on error so callers can report the
// booking id and what was delivered.
func (s *SubmissionService) SubmitBooking(ctx context.Context, req model.BookingRequest) (*BookingResult, error) {
	bookingID := s.newBookingID()

	notification := email.Message{
		To:       s.businessEmail,
		Subject:  fmt.Sprintf("New Booking from %s (ID: %s)", req.Name, bookingID),
		HTMLBody: email.BookingNotificationHTML(s.business, bookingID, req),
		TextBody: email.BookingNotificationText(bookingID, req),
	}

	var confirmation *email.Message
	if req.Email != "" {
		confirmation = &email.Message{
			To:       string(req.Email),
			Subject:  fmt.Sprintf("Booking Confirmation - %s", s.business.Name),
			HTMLBody: email.BookingConfirmationHTML(s.business, bookingID, req),
			TextBody: email.BookingConfirmationText(s.business, bookingID, req),
		}
	}

	delivered, err := s.deliver(ctx, notification, confirmation)
	s.record(ctx, model.KindBooking, bookingID, delivered, err)

	return &BookingResult{BookingID: bookingID, Delivered: delivered}, err
}

// SubmitContact forwards a contact message to the business and acknowledges
// it to the sender.
func (s *SubmissionService) SubmitContact(ctx context.Context, req model.ContactRequest) (*ContactResult, error) {
	notification := email.Message{
		To:       s.businessEmail,
		Subject:  fmt.Sprintf("Contact Form Message - %s", req.Subject),
		HTMLBody: email.ContactNotificationHTML(s.business, req),
		TextBody: email.ContactNotificationText(req),
	}

	var confirmation *email.Message
	if req.Email != "" {
		confirmation = &email.Message{
			To:       string(req.Email),
			Subject:  fmt.Sprintf("We Received Your Message - %s", s.business.Name),
			HTMLBody: email.ContactConfirmationHTML(s.business, req),
			TextBody: email.ContactConfirmationText(s.business, req),
		}
	}

	delivered, err := s.deliver(ctx, notification, confirmation)
	s.record(ctx, model.KindContact, "", delivered, err)

	return &ContactResult{Delivered: delivered}, err
}

// deliver sends the business notification, then the confirmation if any.
// Each message is attempted exactly once.
func (s *SubmissionService) deliver(ctx context.Context, notification email.Message, confirmation *email.Message) ([]string, error) {
	delivered := []string{}

	if err := s.sender.Send(ctx, notification); err != nil {
		return delivered, &TransportError{Stage: StageBusiness, Err: err}
	}
	delivered = append(delivered, StageBusiness)

	if confirmation == nil {
		return delivered, nil
	}

	if err := s.sender.Send(ctx, *confirmation); err != nil {
		return delivered, &PartialDeliveryError{Delivered: delivered, Err: err}
	}
	delivered = append(delivered, StageConfirmation)

	return delivered, nil
}

// record counts the submission and publishes its event. Publishing failures
// never fail the submission.
func (s *SubmissionService) record(ctx context.Context, kind, bookingID string, delivered []string, err error) {
	outcome := Outcome(err)
	metrics.SubmissionsTotal.WithLabelValues(kind, outcome).Inc()

	event := s.log.Info()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.
		Str("kind", kind).
		Str("booking_id", bookingID).
		Strs("delivered", delivered).
		Str("outcome", outcome).
		Msg("submission handled")

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := events.NewSubmissionEvent(kind, bookingID, outcome, delivered)
	if perr := s.publisher.Publish(pubCtx, evt); perr != nil {
		metrics.EventsPublishFailed.Inc()
		s.log.Warn().Err(perr).Str("event_id", evt.ID).Msg("failed to publish submission event")
	}
}

// Outcome classifies a submission error for metrics and events
func Outcome(err error) string {
	var partial *PartialDeliveryError
	switch {
	case err == nil:
		return events.OutcomeDelivered
	case errors.As(err, &partial):
		return events.OutcomePartial
	default:
		return events.OutcomeTransportFailure
	}
}
