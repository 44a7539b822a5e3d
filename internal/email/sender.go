package email

import (
	"context"
	"time"

	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/metrics"
)

// Sender is the interface that all email providers must implement.
// SMTP, Zoho Mail and Gmail are interchangeable behind it.
type Sender interface {
	// Send sends an email to the specified recipient.
	Send(ctx context.Context, msg Message) error
}

// Message represents an email message to be sent.
type Message struct {
	To       string // recipient email address
	Subject  string // email subject
	HTMLBody string // HTML email body
	TextBody string // plain-text fallback body
}

type instrumentedSender struct {
	next     Sender
	provider string
	log      *logger.Logger
}

// Instrument wraps a Sender so every send is logged and counted
func Instrument(next Sender, provider string, log *logger.Logger) Sender {
	return &instrumentedSender{
		next:     next,
		provider: provider,
		log:      log.WithComponent("mail"),
	}
}

func (s *instrumentedSender) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	err := s.next.Send(ctx, msg)
	duration := time.Since(start)

	metrics.MailSendDuration.WithLabelValues(s.provider).Observe(duration.Seconds())
	if err != nil {
		metrics.MailSendFailure.WithLabelValues(s.provider).Inc()
	} else {
		metrics.MailSendSuccess.WithLabelValues(s.provider).Inc()
	}

	s.log.Dispatch(s.provider, msg.To, duration, err)
	return err
}
