package handlers

import (
	"net/http"

	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
)

func (h *Handlers) ListClasses(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	classes, err := h.classes.List(r.Context(), page)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(classes, rest.ToClass))
}

func (h *Handlers) CreateClass(w http.ResponseWriter, r *http.Request) {
	var cmd services.ClassCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	class, err := h.classes.Create(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusCreated, rest.ToClass(class))
}

func (h *Handlers) GetClass(w http.ResponseWriter, r *http.Request) {
	detail, err := h.classes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToClassDetail(detail))
}

func (h *Handlers) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var cmd services.ClassCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	class, err := h.classes.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToClass(class))
}

func (h *Handlers) ListInstructors(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	instructors, err := h.instructors.List(r.Context(), page)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(instructors, rest.ToInstructor))
}

func (h *Handlers) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var cmd services.InstructorCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	instructor, err := h.instructors.Create(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusCreated, rest.ToInstructor(instructor))
}

func (h *Handlers) GetInstructor(w http.ResponseWriter, r *http.Request) {
	instructor, err := h.instructors.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToInstructor(instructor))
}

func (h *Handlers) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	var cmd services.InstructorCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	instructor, err := h.instructors.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToInstructor(instructor))
}

func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	customers, err := h.customers.List(r.Context(), page)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(customers, rest.ToCustomer))
}

func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd services.CustomerCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	customer, err := h.customers.Create(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusCreated, rest.ToCustomer(customer))
}

// GetCustomer returns every tab of the customer page in one response.
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	detail, err := h.customers.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToCustomerDetail(detail))
}

func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd services.CustomerCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	customer, err := h.customers.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToCustomer(customer))
}

func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	bookings, err := h.bookings.List(r.Context(), page)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(bookings, rest.ToBookingView))
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var cmd services.BookingCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	booking, err := h.bookings.Create(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusCreated, rest.ToBooking(booking))
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	detail, err := h.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToBookingDetail(detail))
}

func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var cmd services.BookingCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	booking, err := h.bookings.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToBooking(booking))
}

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payments, err := h.payments.List(r.Context(), page)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.MapSlice(payments, rest.ToPayment))
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.payments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToPayment(payment))
}
