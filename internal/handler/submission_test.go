package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/email"
	"github.com/bristoevents/eventmail/internal/events"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/model"
	"github.com/bristoevents/eventmail/internal/service"
)

const businessInbox = "info@bristoevents.co.ke"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		Business: config.BusinessConfig{
			Email:   businessInbox,
			Name:    "Bristo Event Caterers",
			Phone:   "+254 710 302 253",
			Website: "https://www.bristoevents.co.ke",
		},
		Mail: config.MailConfig{Provider: config.ProviderSMTP},
	}
}

func newTestHandler(t *testing.T, sender email.Sender) *Handler {
	t.Helper()
	cfg := testConfig()
	svc := service.NewSubmissionService(sender, events.Nop{}, cfg.Business, logger.Nop())
	return New(nil, logger.Nop(), cfg, svc)
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBook_Success(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"Jane","email":"jane@example.com","eventType":"wedding","guests":150}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	body := decodeBody(t, resp)
	assert.Equal(t, "Booking received and emails sent", body["message"])
	bookingID, _ := body["booking_id"].(string)
	assert.True(t, model.IsBookingID(bookingID))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, businessInbox, msgs[0].To)
	assert.Contains(t, msgs[0].Subject, bookingID)
	assert.Contains(t, msgs[0].TextBody, "Guests: 150")
	assert.Equal(t, "jane@example.com", msgs[1].To)
}

func TestBook_WithoutEmail(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"Jane"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{businessInbox}, rec.Recipients())
}

func TestBook_EmptyBody(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, ``)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{businessInbox}, rec.Recipients())
}

func TestBook_MalformedJSON(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, CodeInvalidRequest, decodeBody(t, resp)["code"])
	assert.Empty(t, rec.Messages())
}

func TestBook_InvalidEmailRejected(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"Jane","email":"not-an-address"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, CodeValidation, body["code"])
	fields, ok := body["fields"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].(map[string]interface{})["field"])

	assert.Empty(t, rec.Messages(), "no send may be attempted")
}

func TestBook_FieldTooLong(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"`+strings.Repeat("x", 201)+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, rec.Messages())
}

func TestBook_TransportFailure(t *testing.T) {
	rec := &email.RecordingSender{FailFn: func(email.Message) error {
		return errors.New("smtp: failed to send email: connection refused")
	}}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, CodeTransportFailure, body["code"])
	assert.Contains(t, body["error"], "connection refused")
	assert.NotEmpty(t, body["booking_id"])
	assert.Len(t, rec.Messages(), 1)
}

func TestBook_PartialDelivery(t *testing.T) {
	rec := &email.RecordingSender{FailFn: func(m email.Message) error {
		if m.To != businessInbox {
			return errors.New("mailbox unavailable")
		}
		return nil
	}}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Book, `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, CodePartialDelivery, body["code"])
	assert.Equal(t, []interface{}{"business"}, body["delivered"])
	assert.NotEmpty(t, body["booking_id"])
}

func TestContact_Success(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Contact, `{"name":"Sam","email":"sam@example.com","subject":"Menu","message":"Hi"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"Message sent successfully"}`, resp.Body.String())
	assert.Equal(t, []string{businessInbox, "sam@example.com"}, rec.Recipients())
	assert.Equal(t, "Contact Form Message - Menu", rec.Messages()[0].Subject)
}

func TestContact_TransportFailureHasNoBookingID(t *testing.T) {
	rec := &email.RecordingSender{FailFn: func(email.Message) error { return errors.New("down") }}
	h := newTestHandler(t, rec)

	resp := postJSON(h.Contact, `{"name":"Sam"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decodeBody(t, resp)
	assert.Equal(t, CodeTransportFailure, body["code"])
	_, has := body["booking_id"]
	assert.False(t, has)
}

func TestContact_FormAndJSONProduceIdenticalMessages(t *testing.T) {
	jsonRec := &email.RecordingSender{}
	resp := postJSON(newTestHandler(t, jsonRec).Contact,
		`{"name":"Sam","email":"sam@example.com","phone":"0710","preferredContact":"phone","subject":"Menu","message":"Hi there"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	form := url.Values{
		"name":             {"Sam"},
		"email":            {"sam@example.com"},
		"phone":            {"0710"},
		"preferredContact": {"phone"},
		"subject":          {"Menu"},
		"message":          {"Hi there"},
	}
	formRec := &email.RecordingSender{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	newTestHandler(t, formRec).Contact(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, jsonRec.Messages(), formRec.Messages())
}

func TestBook_MultipartForm(t *testing.T) {
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Jane"))
	require.NoError(t, mw.WriteField("eventType", "other"))
	require.NoError(t, mw.WriteField("customEventType", "Graduation"))
	require.NoError(t, mw.Close())

	rec := &email.RecordingSender{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newTestHandler(t, rec).Book(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].TextBody, "Event Type: Graduation")
	assert.Contains(t, msgs[0].Subject, "New Booking from Jane")
}

func TestBook_MultipartFormMixedCaseContentType(t *testing.T) {
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Jane"))
	require.NoError(t, mw.WriteField("email", "jane@example.com"))
	require.NoError(t, mw.Close())

	rec := &email.RecordingSender{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", strings.Replace(mw.FormDataContentType(), "multipart/form-data", "Multipart/Form-Data", 1))
	w := httptest.NewRecorder()
	newTestHandler(t, rec).Book(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{businessInbox, "jane@example.com"}, rec.Recipients())
	assert.Contains(t, rec.Messages()[0].Subject, "New Booking from Jane")
}

func TestBook_BodyTooLarge(t *testing.T) {
	rec := &email.RecordingSender{}
	h := newTestHandler(t, rec)
	h.cfg.Server.MaxBodyBytes = 16

	resp := postJSON(h.Book, `{"name":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Empty(t, rec.Messages())
}
