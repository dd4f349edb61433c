package handlers

import (
	"net/http"

	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
)

func (h *Handlers) PortalClasses(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.viewer(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	classes, err := h.portal.Classes(r.Context(), viewer)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(classes, rest.ToClass))
}

func (h *Handlers) PortalClassBookings(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.viewer(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	bookings, err := h.portal.ClassBookings(r.Context(), viewer, r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(bookings, rest.ToBookingView))
}

func (h *Handlers) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var cmd services.AttendanceCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	viewer, err := h.viewer(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	recorded, err := h.portal.RecordAttendance(r.Context(), viewer, r.PathValue("id"), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("attendance recorded",
		"class_id", r.PathValue("id"),
		"user_id", viewer.UserID,
		"count", len(recorded),
	)
	rest.WriteData(w, http.StatusOK, rest.MapSlice(recorded, rest.ToAttendance))
}

// Checkout sits under /api/ and so is not guarded; it reads the session
// cookie itself.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.viewer(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var cmd services.CheckoutCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), viewer, cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusCreated, result)
}
