package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/bristoevents/eventmail/internal/model"
)

// Business holds the details printed in message footers
type Business struct {
	Name    string
	Phone   string
	Website string
}

func esc(t model.Text) string {
	return html.EscapeString(string(t))
}

// telHref strips everything but digits and a leading "+" for tel: links
func telHref(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func footerHTML(biz Business) string {
	return fmt.Sprintf(`<p style="font-size:13px;color:#888;text-align:center;">
  %s | <a href="tel:%s" style="color:#b22222;">%s</a><br>
  <a href="%s" style="color:#b22222;">%s</a>
</p>`,
		html.EscapeString(biz.Name),
		telHref(biz.Phone), html.EscapeString(biz.Phone),
		html.EscapeString(biz.Website), html.EscapeString(strings.TrimPrefix(strings.TrimPrefix(biz.Website, "https://"), "http://")))
}

func urgentHTML(biz Business) string {
	return fmt.Sprintf(`<p>If you need urgent assistance, please call us directly at
<a href="tel:%s" style="color:#b22222;text-decoration:none;font-weight:bold;">%s</a>.</p>`,
		telHref(biz.Phone), html.EscapeString(biz.Phone))
}

// BookingNotificationHTML returns the HTML body sent to the business inbox for a booking.
func BookingNotificationHTML(biz Business, bookingID string, req model.BookingRequest) string {
	phone := esc(req.Phone)
	return fmt.Sprintf(`<html>
<body style="font-family:Arial,sans-serif;color:#333;line-height:1.6;background-color:#f9f9f9;padding:20px;">
<div style="max-width:600px;margin:auto;background:white;border-radius:10px;padding:20px;">
  <h2 style="color:#b22222;text-align:center;">New Booking Received</h2>
  <p><strong>Booking ID:</strong> %s</p>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Phone:</strong> <a href="tel:%s" style="color:#b22222;text-decoration:none;">%s</a></p>
  <p><strong>Email:</strong> <a href="mailto:%s" style="color:#b22222;text-decoration:none;">%s</a></p>
  <h3 style="color:#b22222;margin-top:25px;">Booking Details</h3>
  <table style="width:100%%;border-collapse:collapse;">
    <tr><td style="padding:8px;border-bottom:1px solid #eee;"><strong>Event Type:</strong></td><td>%s</td></tr>
    <tr><td style="padding:8px;border-bottom:1px solid #eee;"><strong>Event Date:</strong></td><td>%s</td></tr>
    <tr><td style="padding:8px;border-bottom:1px solid #eee;"><strong>Guests:</strong></td><td>%s</td></tr>
    <tr><td style="padding:8px;border-bottom:1px solid #eee;"><strong>Venue Location:</strong></td><td>%s</td></tr>
    <tr><td style="padding:8px;border-bottom:1px solid #eee;"><strong>Budget:</strong></td><td>%s</td></tr>
    <tr><td style="padding:8px;"><strong>Special Requests:</strong></td><td>%s</td></tr>
  </table>
  <p style="margin-top:25px;"><strong>Need to reach the client quickly?</strong><br>
  Call them directly at <a href="tel:%s" style="color:#b22222;font-weight:bold;">%s</a>.</p>
  <hr style="margin:25px 0;border:none;border-top:1px solid #eee;">
  %s
</div>
</body>
</html>`,
		html.EscapeString(bookingID),
		esc(req.Name),
		telHref(string(req.Phone)), phone,
		esc(req.Email), esc(req.Email),
		html.EscapeString(req.DisplayEventType()),
		esc(req.EventDate),
		esc(req.Guests),
		esc(req.VenueLocation),
		esc(req.Budget),
		esc(req.SpecialRequests),
		telHref(string(req.Phone)), phone,
		footerHTML(biz))
}

// BookingNotificationText returns the plain-text body sent to the business inbox for a booking.
func BookingNotificationText(bookingID string, req model.BookingRequest) string {
	return fmt.Sprintf(`New Booking Received:

Booking ID: %s
Name: %s
Phone: %s
Email: %s
Event Type: %s
Event Date: %s
Guests: %s
Venue Location: %s
Budget: %s
Special Requests: %s
`, bookingID, req.Name, req.Phone, req.Email, req.DisplayEventType(),
		req.EventDate, req.Guests, req.VenueLocation, req.Budget, req.SpecialRequests)
}

// BookingConfirmationHTML returns the HTML body sent to the client after a booking.
func BookingConfirmationHTML(biz Business, bookingID string, req model.BookingRequest) string {
	name := html.EscapeString(biz.Name)
	return fmt.Sprintf(`<html>
<body style="font-family:Arial,sans-serif;color:#333;line-height:1.6;">
  <h2 style="color:#b22222;">Booking Confirmation - %s</h2>
  <p>Hi <strong>%s</strong>,</p>
  <p>Thank you for booking with <strong>%s</strong>.</p>
  <p>Your Booking ID is <strong>%s</strong>.</p>
  <h3>Here are your booking details:</h3>
  <ul>
    <li><strong>Event Type:</strong> %s</li>
    <li><strong>Event Date:</strong> %s</li>
    <li><strong>Guests:</strong> %s</li>
    <li><strong>Venue Location:</strong> %s</li>
    <li><strong>Budget:</strong> %s</li>
    <li><strong>Special Requests:</strong> %s</li>
  </ul>
  <p>Our team will contact you shortly to confirm your booking.</p>
  %s
  <p>Best regards,<br><strong>%s Team</strong></p>
</body>
</html>`,
		name,
		esc(req.Name),
		name,
		html.EscapeString(bookingID),
		html.EscapeString(req.DisplayEventType()),
		esc(req.EventDate),
		esc(req.Guests),
		esc(req.VenueLocation),
		esc(req.Budget),
		esc(req.SpecialRequests),
		urgentHTML(biz),
		name)
}

// BookingConfirmationText returns the plain-text body sent to the client after a booking.
func BookingConfirmationText(biz Business, bookingID string, req model.BookingRequest) string {
	return fmt.Sprintf(`Hi %s,

Thank you for booking with %s.

Your Booking ID is %s.

Here are your booking details:
- Event Type: %s
- Event Date: %s
- Guests: %s
- Venue Location: %s
- Budget: %s
- Special Requests: %s

Our team will contact you shortly to confirm the booking and schedule.

If you need urgent assistance, call us directly at %s.

Best regards,
%s Team
`, req.Name, biz.Name, bookingID, req.DisplayEventType(), req.EventDate, req.Guests,
		req.VenueLocation, req.Budget, req.SpecialRequests, biz.Phone, biz.Name)
}

// ContactNotificationHTML returns the HTML body sent to the business inbox for a contact message.
func ContactNotificationHTML(biz Business, req model.ContactRequest) string {
	return fmt.Sprintf(`<html>
<body style="font-family:Arial,sans-serif;color:#333;line-height:1.6;">
  <h2 style="color:#b22222;">New Contact Form Message</h2>
  <p><strong>Full Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <p><strong>Phone Number:</strong> %s</p>
  <p><strong>Preferred Contact Method:</strong> %s</p>
  <p><strong>Subject:</strong> %s</p>
  <p><strong>Message:</strong><br>%s</p>
  <hr>
  <p style="font-size:14px;color:#777;">Sent via the %s website contact form.</p>
</body>
</html>`,
		esc(req.Name),
		esc(req.Email),
		esc(req.Phone),
		esc(req.PreferredContact),
		esc(req.Subject),
		strings.ReplaceAll(esc(req.Message), "\n", "<br>"),
		html.EscapeString(biz.Name))
}

// ContactNotificationText returns the plain-text body sent to the business inbox for a contact message.
func ContactNotificationText(req model.ContactRequest) string {
	return fmt.Sprintf(`New Contact Message Received:

Full Name: %s
Email: %s
Phone Number: %s
Preferred Contact Method: %s
Subject: %s
Message:
%s
`, req.Name, req.Email, req.Phone, req.PreferredContact, req.Subject, req.Message)
}

// ContactConfirmationHTML returns the HTML body sent to the client after a contact message.
func ContactConfirmationHTML(biz Business, req model.ContactRequest) string {
	name := html.EscapeString(biz.Name)
	return fmt.Sprintf(`<html>
<body style="font-family:Arial,sans-serif;color:#333;line-height:1.6;">
  <h2 style="color:#b22222;">We Received Your Message - %s</h2>
  <p>Hi <strong>%s</strong>,</p>
  <p>Thank you for reaching out to <strong>%s</strong>.</p>
  <p>We have received your message and will get back to you as soon as possible.</p>
  <h3>Your Message Summary:</h3>
  <ul>
    <li><strong>Subject:</strong> %s</li>
    <li><strong>Preferred Contact Method:</strong> %s</li>
    <li><strong>Message:</strong> %s</li>
  </ul>
  %s
  <p>Best regards,<br><strong>%s Team</strong></p>
</body>
</html>`,
		name,
		esc(req.Name),
		name,
		esc(req.Subject),
		esc(req.PreferredContact),
		esc(req.Message),
		urgentHTML(biz),
		name)
}

// ContactConfirmationText returns the plain-text body sent to the client after a contact message.
func ContactConfirmationText(biz Business, req model.ContactRequest) string {
	return fmt.Sprintf(`Hi %s,

Thank you for reaching out to %s.

We have received your message and will get back to you shortly.

Here's a summary of your message:
- Subject: %s
- Message: %s
- Preferred Contact Method: %s

If you need to speak to us urgently, call us directly at %s.

Best regards,
%s Team
`, req.Name, biz.Name, req.Subject, req.Message, req.PreferredContact, biz.Phone, biz.Name)
}
