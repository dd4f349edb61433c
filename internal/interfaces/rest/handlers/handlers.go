package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/classbook/internal/access"
	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 1 << 20

// Handlers serves the dashboard, instructor portal and checkout endpoints.
type Handlers struct {
	classes     *services.ClassService
	instructors *services.InstructorService
	customers   *services.CustomerService
	bookings    *services.BookingService
	payments    *services.PaymentQueryService
	portal      *services.InstructorPortalService
	checkout    *services.CheckoutService
	sessions    *access.SessionManager
	roles       application.RoleLookup
	logger      *slog.Logger
}

type Services struct {
	Classes     *services.ClassService
	Instructors *services.InstructorService
	Customers   *services.CustomerService
	Bookings    *services.BookingService
	Payments    *services.PaymentQueryService
	Portal      *services.InstructorPortalService
	Checkout    *services.CheckoutService
}

func NewHandlers(
	svc Services,
	sessions *access.SessionManager,
	roles application.RoleLookup,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		classes:     svc.Classes,
		instructors: svc.Instructors,
		customers:   svc.Customers,
		bookings:    svc.Bookings,
		payments:    svc.Payments,
		portal:      svc.Portal,
		checkout:    svc.Checkout,
		sessions:    sessions,
		roles:       roles,
		logger:      logger,
	}
}

// decodeJSON reads a single JSON document into dst. Unknown fields are
// rejected so typos in form names surface as 400s.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return application.NewInvalidInputError(fmt.Errorf("decode request body: %w", err))
	}
	return nil
}

func pageFrom(r *http.Request) (application.Page, error) {
	var limit, offset int
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		return application.Page{}, application.NewInvalidInputError(err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		return application.Page{}, application.NewInvalidInputError(err)
	}
	return application.NewPage(limit, offset), nil
}

// viewer resolves the signed-in user and their role. Guarded routes find
// the session in the context; exempt routes read the cookie directly.
func (h *Handlers) viewer(r *http.Request) (services.Viewer, error) {
	session, ok := access.SessionFrom(r.Context())
	if !ok {
		var err error
		session, err = h.sessions.FromRequest(r)
		if err != nil {
			h.logger.Debug("no usable session", "path", r.URL.Path, "error", err)
			return services.Viewer{}, application.NewUnauthorizedError()
		}
	}

	role, err := h.roles.RoleOf(r.Context(), session.UserID)
	if err != nil {
		return services.Viewer{}, application.NewInternalError(fmt.Errorf("load role: %w", err))
	}
	return services.Viewer{UserID: session.UserID, Role: role}, nil
}
