package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound     = errors.New("workout program not found")
	ErrEmptyProgram        = errors.New("program has no workout sections to schedule")
	ErrDuplicateProgram    = errors.New("program is already part of the active schedule")
	ErrNoActiveSchedule    = errors.New("no active schedule exists for this user")
	ErrProgramNotScheduled = errors.New("program is not part of the active schedule")
)

// ProgramMembership reports whether a program contributes to the user's
// active schedule.
type ProgramMembership struct {
	InSchedule bool    `json:"in_schedule"`
	ScheduleID *string `json:"schedule_id"`
}

// ScheduleService composes weekly slot maps from programs and maintains the
// user's single active schedule.
type ScheduleService interface {
	// GenerateSchedule distributes the program's workout sections across the
	// week and merges the result into the user's active schedule, creating
	// one if none exists.
	GenerateSchedule(ctx context.Context, userID, programID primitive.ObjectID, startDate *time.Time, restDays []domain.Weekday) (*domain.UserSchedule, error)
	// RemoveProgram detaches a program and its sections from the active
	// schedule, deactivating the schedule when no programs remain.
	RemoveProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.UserSchedule, error)
	// GetActiveSchedule returns the active schedule, or nil when none exists.
	GetActiveSchedule(ctx context.Context, userID primitive.ObjectID) (*domain.UserSchedule, error)
	// UpdateStartDate moves the projection anchor of the active schedule.
	UpdateStartDate(ctx context.Context, userID primitive.ObjectID, startDate time.Time) (*domain.UserSchedule, error)
	// DeactivateSchedules deactivates every active schedule of the user and
	// returns how many were affected.
	DeactivateSchedules(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// ProgramMembership reports whether the program is attached to the
	// user's active schedule.
	ProgramMembership(ctx context.Context, userID, programID primitive.ObjectID) (*ProgramMembership, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	programRepo  repository.ProgramRepository
	scheduleRepo repository.ScheduleRepository
	locks        *userLocker
	now          func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(programRepo repository.ProgramRepository, scheduleRepo repository.ScheduleRepository) ScheduleService {
	return &scheduleService{
		programRepo:  programRepo,
		scheduleRepo: scheduleRepo,
		locks:        newUserLocker(),
		now:          time.Now,
	}
}

// composeSlotMap distributes the program's non-rest sections across the
// seven weekdays. Weekdays are visited in canonical monday-first order; days
// declared as rest by the caller are skipped, and at most min(frequency, 7)
// days receive a section. Sections are taken by ascending Order and the
// cursor wraps round-robin, so a program with fewer sections than its
// frequency repeats sections rather than running out. Each scheduled day
// receives exactly one section from a single program.
func composeSlotMap(program *domain.WorkoutProgram, restDays map[domain.Weekday]bool) (domain.WeeklySchedule, error) {
	sections := program.WorkoutSections()
	if len(sections) == 0 {
		return domain.WeeklySchedule{}, ErrEmptyProgram
	}

	frequency := program.WeeklyFrequency
	if frequency > 7 {
		frequency = 7
	}

	slotMap := domain.NewWeeklySchedule()
	assigned := 0
	cursor := 0
	for _, day := range domain.Weekdays {
		if restDays[day] {
			continue
		}
		if assigned >= frequency {
			continue
		}
		slotMap.Append(day, sections[cursor%len(sections)].ID)
		cursor++
		assigned++
	}
	return slotMap, nil
}

// resolveAnchorDate picks the schedule's projection anchor: an explicit
// caller-supplied date wins; otherwise an existing active schedule keeps its
// anchor so merging a second program does not shift it; otherwise the next
// Monday strictly after today.
func (s *scheduleService) resolveAnchorDate(explicit *time.Time, existing *domain.UserSchedule) time.Time {
	if explicit != nil {
		return domain.DateOnly(*explicit)
	}
	if existing != nil {
		return domain.DateOnly(existing.StartDate)
	}
	return nextMonday(s.now())
}

// nextMonday returns the Monday strictly after today. When today is Monday
// it still advances a full week.
func nextMonday(now time.Time) time.Time {
	today := domain.DateOnly(now)
	offset := 7 - int(domain.WeekdayOf(today))
	return today.AddDate(0, 0, offset)
}

// GenerateSchedule composes a slot map for the program and merges it into
// the user's active schedule as a single read-modify-write under the
// per-user lock.
func (s *scheduleService) GenerateSchedule(ctx context.Context, userID, programID primitive.ObjectID, startDate *time.Time, restDays []domain.Weekday) (*domain.UserSchedule, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	rest := make(map[domain.Weekday]bool, len(restDays))
	for _, d := range restDays {
		rest[d] = true
	}

	// All validation happens before any write.
	slotMap, err := composeSlotMap(program, rest)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(userID.Hex())
	defer s.locks.Unlock(userID.Hex())

	existing, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		existing = nil
	}

	anchor := s.resolveAnchorDate(startDate, existing)

	if existing == nil {
		schedule := &domain.UserSchedule{
			UserID:         userID,
			StartDate:      anchor,
			WeeklySchedule: slotMap,
			IsActive:       true,
			ProgramIDs:     []primitive.ObjectID{programID},
		}
		id, err := s.scheduleRepo.Create(ctx, schedule)
		if err != nil {
			return nil, err
		}
		schedule.ID = id
		logrus.WithFields(logrus.Fields{
			"userId":    userID.Hex(),
			"programId": programID.Hex(),
			"startDate": domain.FormatDate(anchor),
		}).Info("created active schedule")
		return schedule, nil
	}

	if existing.HasProgram(programID) {
		return nil, ErrDuplicateProgram
	}

	// Concatenate the new slot map onto the existing weekday lists. Existing
	// entries are preserved; a day can end up with sections from multiple
	// programs and no rebalancing occurs.
	for _, day := range domain.Weekdays {
		existing.WeeklySchedule.Append(day, slotMap.Slot(day)...)
	}
	existing.ProgramIDs = append(existing.ProgramIDs, programID)
	existing.StartDate = anchor

	if err := s.scheduleRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"userId":    userID.Hex(),
		"programId": programID.Hex(),
		"programs":  len(existing.ProgramIDs),
	}).Info("merged program into active schedule")
	return existing, nil
}

// RemoveProgram detaches the program from the active schedule, removing its
// section ids from every weekday by membership. The schedule record is kept
// as inactive history once its last program is removed.
func (s *scheduleService) RemoveProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.UserSchedule, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	s.locks.Lock(userID.Hex())
	defer s.locks.Unlock(userID.Hex())

	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSchedule
		}
		return nil, err
	}
	if !schedule.HasProgram(programID) {
		return nil, ErrProgramNotScheduled
	}

	schedule.WeeklySchedule.RemoveSections(program.SectionIDs())
	schedule.DetachProgram(programID)
	if len(schedule.ProgramIDs) == 0 {
		schedule.IsActive = false
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"userId":    userID.Hex(),
		"programId": programID.Hex(),
		"active":    schedule.IsActive,
	}).Info("removed program from schedule")
	return schedule, nil
}

// GetActiveSchedule returns the user's active schedule, or nil when none.
func (s *scheduleService) GetActiveSchedule(ctx context.Context, userID primitive.ObjectID) (*domain.UserSchedule, error) {
	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schedule, nil
}

// UpdateStartDate moves the active schedule's projection anchor.
func (s *scheduleService) UpdateStartDate(ctx context.Context, userID primitive.ObjectID, startDate time.Time) (*domain.UserSchedule, error) {
	s.locks.Lock(userID.Hex())
	defer s.locks.Unlock(userID.Hex())

	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSchedule
		}
		return nil, err
	}

	schedule.StartDate = domain.DateOnly(startDate)
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// DeactivateSchedules deactivates all active schedules for the user.
func (s *scheduleService) DeactivateSchedules(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.locks.Lock(userID.Hex())
	defer s.locks.Unlock(userID.Hex())

	return s.scheduleRepo.DeactivateAllForUser(ctx, userID)
}

// ProgramMembership reports whether the program contributes to the user's
// active schedule.
func (s *scheduleService) ProgramMembership(ctx context.Context, userID, programID primitive.ObjectID) (*ProgramMembership, error) {
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ProgramMembership{InSchedule: false}, nil
		}
		return nil, err
	}

	membership := &ProgramMembership{InSchedule: schedule.HasProgram(programID)}
	if membership.InSchedule {
		id := schedule.ID.Hex()
		membership.ScheduleID = &id
	}
	return membership, nil
}
