package service

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidProgram = errors.New("invalid program definition")
)

// ProgramInput is the full nested tree a trainer submits when creating a
// program. Section, exercise and set ids are generated on create.
type ProgramInput struct {
	Name            string
	Description     string
	Focus           []domain.Focus
	Difficulty      string
	WeeklyFrequency int
	SessionLength   int
	Sections        []SectionInput
}

type SectionInput struct {
	Name      string
	Type      string
	IsRestDay bool
	Exercises []ExerciseInput
}

type ExerciseInput struct {
	Name string
	Sets []SetInput
}

type SetInput struct {
	Reps        *int
	TimeSeconds *int
	RestSeconds int
}

// ProgramService owns trainer CRUD on workout programs. The scheduling core
// consumes the resulting program trees read-only.
type ProgramService interface {
	CreateProgram(ctx context.Context, trainerID primitive.ObjectID, input ProgramInput) (*domain.WorkoutProgram, error)
	GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.WorkoutProgram, error)
	GetTrainerPrograms(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutProgram, error)
	DeleteProgram(ctx context.Context, programID, trainerID primitive.ObjectID) error
}

// programService implements the ProgramService interface.
type programService struct {
	programRepo repository.ProgramRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository) ProgramService {
	return &programService{programRepo: programRepo}
}

// CreateProgram validates and persists a program with its nested
// section -> exercise -> set tree. Order fields are assigned from the
// submitted ordering.
func (s *programService) CreateProgram(ctx context.Context, trainerID primitive.ObjectID, input ProgramInput) (*domain.WorkoutProgram, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProgram)
	}
	if input.WeeklyFrequency < 1 {
		return nil, fmt.Errorf("%w: weekly_frequency must be at least 1", ErrInvalidProgram)
	}
	if len(input.Focus) == 0 {
		return nil, fmt.Errorf("%w: at least one focus is required", ErrInvalidProgram)
	}
	for _, f := range input.Focus {
		if !domain.ValidFocus(f) {
			return nil, fmt.Errorf("%w: unknown focus %q", ErrInvalidProgram, f)
		}
	}

	sections := make([]domain.ProgramSection, 0, len(input.Sections))
	for i, sec := range input.Sections {
		exercises := make([]domain.Exercise, 0, len(sec.Exercises))
		for j, ex := range sec.Exercises {
			if ex.Name == "" {
				return nil, fmt.Errorf("%w: exercise name is required", ErrInvalidProgram)
			}
			sets := make([]domain.ExerciseSet, 0, len(ex.Sets))
			for k, set := range ex.Sets {
				if (set.Reps == nil) == (set.TimeSeconds == nil) {
					return nil, fmt.Errorf("%w: each set needs exactly one of reps or time_seconds", ErrInvalidProgram)
				}
				sets = append(sets, domain.ExerciseSet{
					SetNumber:   k + 1,
					Reps:        set.Reps,
					TimeSeconds: set.TimeSeconds,
					RestSeconds: set.RestSeconds,
				})
			}
			exercises = append(exercises, domain.Exercise{
				ID:    primitive.NewObjectID(),
				Name:  ex.Name,
				Order: j,
				Sets:  sets,
			})
		}
		sections = append(sections, domain.ProgramSection{
			ID:        primitive.NewObjectID(),
			Name:      sec.Name,
			Type:      sec.Type,
			IsRestDay: sec.IsRestDay,
			Order:     i,
			Exercises: exercises,
		})
	}

	program := &domain.WorkoutProgram{
		TrainerID:       &trainerID,
		Name:            input.Name,
		Description:     input.Description,
		Focus:           input.Focus,
		Difficulty:      input.Difficulty,
		WeeklyFrequency: input.WeeklyFrequency,
		SessionLength:   input.SessionLength,
		Sections:        sections,
	}

	id, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = id
	return program, nil
}

// GetProgram returns a program by id. Programs are readable by any
// authenticated user; users need to see trainer programs to schedule them.
func (s *programService) GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.WorkoutProgram, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// GetTrainerPrograms lists the trainer's own non-deleted programs.
func (s *programService) GetTrainerPrograms(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	return s.programRepo.GetByTrainerID(ctx, trainerID)
}

// DeleteProgram soft-deletes a program owned by the trainer. Schedules that
// still reference its sections keep their ids; the calendar read path skips
// them as stale.
func (s *programService) DeleteProgram(ctx context.Context, programID, trainerID primitive.ObjectID) error {
	err := s.programRepo.SoftDelete(ctx, programID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}
