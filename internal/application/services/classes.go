package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

type ClassService struct {
	classes     application.ClassRepository
	instructors application.InstructorRepository
	bookings    application.BookingRepository
	logger      *slog.Logger
}

func NewClassService(
	classes application.ClassRepository,
	instructors application.InstructorRepository,
	bookings application.BookingRepository,
	logger *slog.Logger,
) *ClassService {
	return &ClassService{
		classes:     classes,
		instructors: instructors,
		bookings:    bookings,
		logger:      logger,
	}
}

func (s *ClassService) Create(ctx context.Context, cmd ClassCommand) (*domain.Class, error) {
	if err := s.check(ctx, cmd); err != nil {
		return nil, err
	}

	now := utcNow()
	class := &domain.Class{CreatedAt: now}
	cmd.apply(class, now)

	if err := s.classes.Create(ctx, class); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("class created", "class_id", class.ID, "code", class.Code)
	return class, nil
}

func (s *ClassService) Update(ctx context.Context, id string, cmd ClassCommand) (*domain.Class, error) {
	if err := s.check(ctx, cmd); err != nil {
		return nil, err
	}

	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	cmd.apply(class, utcNow())
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, mapRepoError(err)
	}
	return class, nil
}

// Get returns the class with its instructor and bookings.
func (s *ClassService) Get(ctx context.Context, id string) (*application.ClassDetail, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	detail := &application.ClassDetail{Class: class}

	instructor, err := s.instructors.FindByID(ctx, class.InstructorID)
	switch {
	case err == nil:
		detail.Instructor = instructor
	case !domain.IsNotFound(err):
		return nil, mapRepoError(err)
	}

	detail.Bookings, err = s.bookings.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return detail, nil
}

func (s *ClassService) List(ctx context.Context, page application.Page) ([]*domain.Class, error) {
	classes, err := s.classes.List(ctx, page)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return classes, nil
}

func (s *ClassService) check(ctx context.Context, cmd ClassCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}
	start, err := parseClock("start_time", cmd.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock("end_time", cmd.EndTime)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return invalidField("end_time", "gtfield", domain.NewInvalidStateError("end time must be after start time"))
	}

	if _, err := s.instructors.FindByID(ctx, cmd.InstructorID); err != nil {
		if domain.IsNotFound(err) {
			return invalidField("instructor_id", "exists", err)
		}
		return mapRepoError(err)
	}
	return nil
}

func (cmd ClassCommand) apply(c *domain.Class, now time.Time) {
	c.Name = cmd.Name
	c.Code = cmd.Code
	c.ExerciseTypeID = cmd.ExerciseTypeID
	c.Venue = cmd.Venue
	c.Address = cmd.Address
	c.ZipCode = cmd.ZipCode
	c.DayOfWeek = cmd.DayOfWeek
	c.StartTime = cmd.StartTime
	c.EndTime = cmd.EndTime
	c.InstructorID = cmd.InstructorID
	c.FeeCriteria = cmd.FeeCriteria
	c.FeeAmount = cmd.FeeAmount
	c.Term = domain.Term(cmd.Term)
	c.Capacity = cmd.Capacity
	c.IsSubsidised = cmd.IsSubsidised
	c.UpdatedAt = now
}
