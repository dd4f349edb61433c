package handlers

import (
	"net/http"

	"github.com/DanielPopoola/classbook/internal/interfaces/rest/middleware"
)

// Register mounts every endpoint on mux. docs may be nil.
func Register(mux *http.ServeMux, h *Handlers, webhook *WebhookHandler, health http.Handler, docs http.Handler) {
	mux.Handle("/api/stripe/webhook", middleware.CORS(webhook))
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.Handle("GET /healthz", health)
	if docs != nil {
		mux.Handle("GET /docs/", docs)
	}

	mux.HandleFunc("GET /dashboard/classes", h.ListClasses)
	mux.HandleFunc("POST /dashboard/classes", h.CreateClass)
	mux.HandleFunc("GET /dashboard/classes/{id}", h.GetClass)
	mux.HandleFunc("PUT /dashboard/classes/{id}", h.UpdateClass)

	mux.HandleFunc("GET /dashboard/instructors", h.ListInstructors)
	mux.HandleFunc("POST /dashboard/instructors", h.CreateInstructor)
	mux.HandleFunc("GET /dashboard/instructors/{id}", h.GetInstructor)
	mux.HandleFunc("PUT /dashboard/instructors/{id}", h.UpdateInstructor)

	mux.HandleFunc("GET /dashboard/customers", h.ListCustomers)
	mux.HandleFunc("POST /dashboard/customers", h.CreateCustomer)
	mux.HandleFunc("GET /dashboard/customers/{id}", h.GetCustomer)
	mux.HandleFunc("PUT /dashboard/customers/{id}", h.UpdateCustomer)

	mux.HandleFunc("GET /dashboard/bookings", h.ListBookings)
	mux.HandleFunc("POST /dashboard/bookings", h.CreateBooking)
	mux.HandleFunc("GET /dashboard/bookings/{id}", h.GetBooking)
	mux.HandleFunc("PUT /dashboard/bookings/{id}", h.UpdateBooking)

	mux.HandleFunc("GET /dashboard/payments", h.ListPayments)
	mux.HandleFunc("GET /dashboard/payments/{id}", h.GetPayment)

	mux.HandleFunc("GET /instructor-portal/classes", h.PortalClasses)
	mux.HandleFunc("GET /instructor-portal/classes/{id}/bookings", h.PortalClassBookings)
	mux.HandleFunc("POST /instructor-portal/classes/{id}/attendance", h.RecordAttendance)
}
