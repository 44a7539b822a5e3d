package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bristoevents/eventmail/internal/model"
)

var testBusiness = Business{
	Name:    "Bristo Event Caterers",
	Phone:   "+254 710 302 253",
	Website: "https://www.bristoevents.co.ke",
}

func TestBookingTemplates_RenderFields(t *testing.T) {
	req := model.BookingRequest{
		Name:            "Jane",
		Phone:           "0700 000 000",
		Email:           "jane@x.com",
		EventType:       "wedding",
		EventDate:       "2026-12-01",
		Guests:          "150",
		VenueLocation:   "Nairobi",
		Budget:          "KES 200,000",
		SpecialRequests: "Vegan options",
	}

	bodies := map[string]string{
		"notification html": BookingNotificationHTML(testBusiness, "BK1234ABCD", req),
		"notification text": BookingNotificationText("BK1234ABCD", req),
		"confirmation html": BookingConfirmationHTML(testBusiness, "BK1234ABCD", req),
		"confirmation text": BookingConfirmationText(testBusiness, "BK1234ABCD", req),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			for _, want := range []string{"BK1234ABCD", "Jane", "wedding", "2026-12-01", "150", "Nairobi", "KES 200,000", "Vegan options"} {
				assert.Contains(t, body, want)
			}
		})
	}

	assert.Contains(t, bodies["notification html"], `href="tel:0700000000"`)
	assert.Contains(t, bodies["notification html"], `href="tel:+254710302253"`)
	assert.Contains(t, bodies["notification html"], "www.bristoevents.co.ke")
}

func TestBookingTemplates_OtherEventType(t *testing.T) {
	req := model.BookingRequest{EventType: "other", CustomEventType: "Graduation"}

	for _, body := range []string{
		BookingNotificationHTML(testBusiness, "BK00000000", req),
		BookingNotificationText("BK00000000", req),
		BookingConfirmationHTML(testBusiness, "BK00000000", req),
		BookingConfirmationText(testBusiness, "BK00000000", req),
	} {
		assert.Contains(t, body, "Graduation")
		assert.NotContains(t, body, "Event Type: other")
		assert.NotContains(t, body, ">other<")
		assert.NotContains(t, body, "</strong> other")
	}
}

func TestTemplates_EscapeUserInput(t *testing.T) {
	booking := model.BookingRequest{Name: `<script>alert("x")</script>`, SpecialRequests: "a & b"}
	contact := model.ContactRequest{Message: "<img src=x onerror=alert(1)>", Subject: "<b>hi</b>"}

	for _, body := range []string{
		BookingNotificationHTML(testBusiness, "BK00000000", booking),
		BookingConfirmationHTML(testBusiness, "BK00000000", booking),
		ContactNotificationHTML(testBusiness, contact),
		ContactConfirmationHTML(testBusiness, contact),
	} {
		assert.NotContains(t, body, "<script>")
		assert.NotContains(t, body, "<img")
		assert.NotContains(t, body, "<b>hi</b>")
	}

	assert.Contains(t, BookingNotificationHTML(testBusiness, "BK00000000", booking), "a &amp; b")
}

func TestContactTemplates_RenderFields(t *testing.T) {
	req := model.ContactRequest{
		Name:             "Jane",
		Email:            "jane@x.com",
		Phone:            "0700000000",
		PreferredContact: "phone",
		Subject:          "Menu",
		Message:          "Do you cater vegan?\nThanks",
	}

	notification := ContactNotificationHTML(testBusiness, req)
	assert.Contains(t, notification, "Do you cater vegan?<br>Thanks")
	assert.Contains(t, notification, "Sent via the Bristo Event Caterers website contact form.")

	for _, body := range []string{
		ContactNotificationText(req),
		ContactConfirmationHTML(testBusiness, req),
		ContactConfirmationText(testBusiness, req),
	} {
		assert.Contains(t, body, "Menu")
		assert.Contains(t, body, "phone")
		assert.Contains(t, body, "Do you cater vegan?")
	}
}

func TestTelHref(t *testing.T) {
	assert.Equal(t, "+254710302253", telHref("+254 710 302 253"))
	assert.Equal(t, "0700000000", telHref("(0700) 000-000"))
	assert.Equal(t, "123", telHref("1+2+3"))
}
