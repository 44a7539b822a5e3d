package handler

import (
	"errors"
	"net/http"

	"github.com/bristoevents/eventmail/internal/middleware"
	"github.com/bristoevents/eventmail/internal/model"
	"github.com/bristoevents/eventmail/internal/service"
)

// BookingResponse is returned by POST /api/book
type BookingResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id"`
}

// MessageResponse is returned by POST /api/contact
type MessageResponse struct {
	Message string `json:"message"`
}

// Book handles a booking submission
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, h.validator.ValidateBooking(&req)) {
		return
	}

	res, err := h.svc.SubmitBooking(r.Context(), req)
	if err != nil {
		h.writeSubmitError(w, r, err, res.BookingID)
		return
	}

	writeJSON(w, http.StatusOK, BookingResponse{
		Message:   "Booking received and emails sent",
		BookingID: res.BookingID,
	})
}

// Contact handles a contact form submission
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, h.validator.ValidateContact(&req)) {
		return
	}

	if _, err := h.svc.SubmitContact(r.Context(), req); err != nil {
		h.writeSubmitError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Message sent successfully"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := h.bind(w, r, v)
	if err == nil {
		return true
	}
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidRequest, err.Error())
		return false
	}
	writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	return false
}

func (h *Handler) validate(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}

	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   CodeValidation,
			Fields: verrs,
		})
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
	return false
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error, bookingID string) {
	resp := ErrorResponse{
		Error:     err.Error(),
		Code:      CodeTransportFailure,
		BookingID: bookingID,
	}

	var partial *service.PartialDeliveryError
	if errors.As(err, &partial) {
		resp.Code = CodePartialDelivery
		resp.Delivered = partial.Delivered
	}

	h.log.WithRequestID(middleware.GetRequestID(r.Context())).Error().
		Err(err).
		Str("code", resp.Code).
		Str("booking_id", bookingID).
		Msg("submission failed")

	writeJSON(w, http.StatusInternalServerError, resp)
}
