package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

// BookingService manages bookings created directly by staff. Bookings that
// come from a paid enrollment are written by reconciliation.
type BookingService struct {
	bookings    application.BookingRepository
	classes     application.ClassRepository
	customers   application.CustomerRepository
	enrollments application.EnrollmentRepository
	payments    application.PaymentRepository
	uow         application.UnitOfWork
	logger      *slog.Logger
}

func NewBookingService(
	bookings application.BookingRepository,
	classes application.ClassRepository,
	customers application.CustomerRepository,
	enrollments application.EnrollmentRepository,
	payments application.PaymentRepository,
	uow application.UnitOfWork,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings:    bookings,
		classes:     classes,
		customers:   customers,
		enrollments: enrollments,
		payments:    payments,
		uow:         uow,
		logger:      logger,
	}
}

func (s *BookingService) Create(ctx context.Context, cmd BookingCommand) (*domain.Booking, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	date, err := parseBookingDate(cmd.BookingDate)
	if err != nil {
		return nil, err
	}

	class, err := s.classes.FindByID(ctx, cmd.ClassID)
	if err != nil {
		return nil, referenceError("class_id", err)
	}
	if _, err := s.customers.FindByID(ctx, cmd.CustomerID); err != nil {
		return nil, referenceError("customer_id", err)
	}
	if cmd.EnrollmentID != nil {
		if _, err := s.enrollments.FindByID(ctx, *cmd.EnrollmentID); err != nil {
			return nil, referenceError("enrollment_id", err)
		}
	}

	booking, err := domain.NewBooking(*class, cmd.EnrollmentID, cmd.CustomerID, date, cmd.IsTrial, utcNow())
	if err != nil {
		return nil, mapRepoError(err)
	}
	if cmd.Term != "" {
		booking.Term = domain.Term(cmd.Term)
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("booking created", "booking_id", booking.ID, "class_id", booking.ClassID)
	return booking, nil
}

// Update changes the class, date, term or trial flag. Customer and
// enrollment are fixed at creation. A booking with recorded attendance
// can no longer change.
func (s *BookingService) Update(ctx context.Context, id string, cmd BookingCommand) (*domain.Booking, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	date, err := parseBookingDate(cmd.BookingDate)
	if err != nil {
		return nil, err
	}

	// The booking row lock orders this update against attendance being
	// recorded for the same booking.
	var booking *domain.Booking
	err = s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		locked, err := repos.Bookings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepoError(err)
		}

		attended, err := repos.Attendance.ExistsForBooking(ctx, locked.ID)
		if err != nil {
			return mapRepoError(err)
		}
		if attended {
			return mapRepoError(domain.NewAttendanceRecordedError(locked.ID))
		}

		if cmd.ClassID != locked.ClassID {
			class, err := s.classes.FindByID(ctx, cmd.ClassID)
			if err != nil {
				return referenceError("class_id", err)
			}
			locked.ClassID = class.ID
			locked.Term = class.Term
		}
		if cmd.Term != "" {
			locked.Term = domain.Term(cmd.Term)
		}
		locked.BookingDate = date
		locked.IsTrial = cmd.IsTrial
		locked.UpdatedAt = utcNow()

		if err := repos.Bookings.Update(ctx, locked); err != nil {
			return mapRepoError(err)
		}
		booking = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Get returns the booking with its enrollment, class and payments. The
// enrollment is nil for staff bookings made outside checkout.
func (s *BookingService) Get(ctx context.Context, id string) (*application.BookingDetail, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	detail := &application.BookingDetail{Booking: booking}

	if detail.Class, err = s.classes.FindByID(ctx, booking.ClassID); err != nil {
		return nil, mapRepoError(err)
	}

	if booking.EnrollmentID != nil {
		if detail.Enrollment, err = s.enrollments.FindByID(ctx, *booking.EnrollmentID); err != nil {
			return nil, mapRepoError(err)
		}
	}

	payments, err := s.payments.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if booking.EnrollmentID != nil {
		byEnrollment, err := s.payments.ListByEnrollment(ctx, *booking.EnrollmentID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		payments = append(payments, byEnrollment...)
	}
	detail.Payments = payments
	return detail, nil
}

func (s *BookingService) List(ctx context.Context, page application.Page) ([]application.BookingView, error) {
	bookings, err := s.bookings.List(ctx, page)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return bookings, nil
}

func parseBookingDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalidField("booking_date", "date", err)
	}
	return date, nil
}

// referenceError reports a form field pointing at a missing record.
func referenceError(field string, err error) error {
	if domain.IsNotFound(err) {
		return invalidField(field, "exists", err)
	}
	return mapRepoError(err)
}
