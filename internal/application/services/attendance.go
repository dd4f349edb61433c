package services

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

// Viewer is the signed-in user an instructor portal request acts for.
type Viewer struct {
	UserID string
	Role   domain.Role
}

func (v Viewer) isAdmin() bool { return v.Role == domain.RoleAdmin }

// InstructorPortalService lets instructors see their classes and take
// attendance. Admins may act on any class.
type InstructorPortalService struct {
	instructors application.InstructorRepository
	classes     application.ClassRepository
	bookings    application.BookingRepository
	attendance  application.AttendanceRepository
	logger      *slog.Logger
}

func NewInstructorPortalService(
	instructors application.InstructorRepository,
	classes application.ClassRepository,
	bookings application.BookingRepository,
	attendance application.AttendanceRepository,
	logger *slog.Logger,
) *InstructorPortalService {
	return &InstructorPortalService{
		instructors: instructors,
		classes:     classes,
		bookings:    bookings,
		attendance:  attendance,
		logger:      logger,
	}
}

// Classes lists the classes taught by the viewer. A user without an
// instructor profile has none.
func (s *InstructorPortalService) Classes(ctx context.Context, viewer Viewer) ([]*domain.Class, error) {
	instructor, err := s.instructors.FindByUserID(ctx, viewer.UserID)
	if domain.IsNotFound(err) {
		return []*domain.Class{}, nil
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	classes, err := s.classes.ListByInstructor(ctx, instructor.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return classes, nil
}

func (s *InstructorPortalService) ClassBookings(ctx context.Context, viewer Viewer, classID string) ([]application.BookingView, error) {
	if _, err := s.ownedClass(ctx, viewer, classID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByClass(ctx, classID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return bookings, nil
}

// RecordAttendance marks the listed bookings of a class as attended. Every
// id must be a booking of that class; the batch is written atomically.
func (s *InstructorPortalService) RecordAttendance(ctx context.Context, viewer Viewer, classID string, cmd AttendanceCommand) ([]domain.Attendance, error) {
	if len(cmd.PresentBookingIDs) == 0 {
		return nil, mapRepoError(domain.NewNoAttendanceError())
	}

	class, err := s.ownedClass(ctx, viewer, classID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	booked := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		booked[b.ID] = struct{}{}
	}

	now := utcNow()
	seen := make(map[string]struct{}, len(cmd.PresentBookingIDs))
	records := make([]domain.Attendance, 0, len(cmd.PresentBookingIDs))
	for _, id := range cmd.PresentBookingIDs {
		if _, ok := booked[id]; !ok {
			return nil, invalidField("present_booking_ids", "booking", domain.NewNotFoundError("booking", id))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		records = append(records, domain.Attendance{
			ClassID:    class.ID,
			BookingID:  id,
			Attended:   true,
			RecordedAt: now,
		})
	}

	if err := s.attendance.Record(ctx, records); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("attendance recorded", "class_id", class.ID, "present", len(records), "user_id", viewer.UserID)
	return records, nil
}

// ownedClass loads a class the viewer may act on. Another instructor's
// class is reported as not found.
func (s *InstructorPortalService) ownedClass(ctx context.Context, viewer Viewer, classID string) (*domain.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if viewer.isAdmin() {
		return class, nil
	}

	instructor, err := s.instructors.FindByUserID(ctx, viewer.UserID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, mapRepoError(err)
	}
	if instructor == nil || instructor.ID != class.InstructorID {
		return nil, mapRepoError(domain.NewNotFoundError("class", classID))
	}
	return class, nil
}
