package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

type InstructorService struct {
	instructors application.InstructorRepository
	logger      *slog.Logger
}

func NewInstructorService(instructors application.InstructorRepository, logger *slog.Logger) *InstructorService {
	return &InstructorService{instructors: instructors, logger: logger}
}

func (s *InstructorService) Create(ctx context.Context, cmd InstructorCommand) (*domain.Instructor, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	now := utcNow()
	instructor := &domain.Instructor{CreatedAt: now}
	cmd.apply(instructor, now)

	if err := s.instructors.Create(ctx, instructor); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("instructor created", "instructor_id", instructor.ID)
	return instructor, nil
}

func (s *InstructorService) Update(ctx context.Context, id string, cmd InstructorCommand) (*domain.Instructor, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	instructor, err := s.instructors.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	cmd.apply(instructor, utcNow())
	if err := s.instructors.Update(ctx, instructor); err != nil {
		return nil, mapRepoError(err)
	}
	return instructor, nil
}

func (s *InstructorService) Get(ctx context.Context, id string) (*domain.Instructor, error) {
	instructor, err := s.instructors.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return instructor, nil
}

func (s *InstructorService) List(ctx context.Context, page application.Page) ([]*domain.Instructor, error) {
	instructors, err := s.instructors.List(ctx, page)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return instructors, nil
}

func (cmd InstructorCommand) apply(i *domain.Instructor, now time.Time) {
	i.UserID = cmd.UserID
	i.Name = cmd.Name
	i.Email = cmd.Email
	i.Phone = cmd.Phone
	i.Specialty = cmd.Specialty
	i.UpdatedAt = now
}
