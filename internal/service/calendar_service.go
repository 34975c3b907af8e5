package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCalendarHorizonDays is the projection window used by the active
// schedule view (four weeks).
const DefaultCalendarHorizonDays = 28

// CalendarSection is the per-day summary of one scheduled section, carrying
// the parent program's identity for client display.
type CalendarSection struct {
	SectionID     string         `json:"section_id"`
	Name          string         `json:"name"`
	Type          string         `json:"type,omitempty"`
	ProgramID     string         `json:"program_id"`
	ProgramName   string         `json:"program_name"`
	ProgramFocus  []domain.Focus `json:"program_focus"`
	ExerciseCount int            `json:"exercise_count"`
}

// CalendarEntry is one dated day of the projected calendar.
type CalendarEntry struct {
	Date          string                `json:"date"`
	Weekday       string                `json:"weekday"`
	Sections      []CalendarSection     `json:"sections"`
	SectionType   string                `json:"section_type"` // "workout" or "rest"
	ExerciseCount int                   `json:"exercise_count"`
	SessionStatus *domain.SessionStatus `json:"session_status"`
}

// WorkoutSetDetail mirrors one exercise set for client rendering.
type WorkoutSetDetail struct {
	SetNumber   int  `json:"set_number"`
	Reps        *int `json:"reps,omitempty"`
	TimeSeconds *int `json:"time_seconds,omitempty"`
	RestSeconds int  `json:"rest_seconds"`
}

// WorkoutExerciseDetail is the full detail of one exercise within a section.
type WorkoutExerciseDetail struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Order int                `json:"order"`
	Sets  []WorkoutSetDetail `json:"sets"`
}

// WorkoutDetail is the full nested detail of one scheduled section.
type WorkoutDetail struct {
	SectionID    string                  `json:"section_id"`
	Name         string                  `json:"name"`
	Type         string                  `json:"type,omitempty"`
	ProgramID    string                  `json:"program_id"`
	ProgramName  string                  `json:"program_name"`
	ProgramFocus []domain.Focus          `json:"program_focus"`
	Exercises    []WorkoutExerciseDetail `json:"exercises"`
}

// DayWorkouts is the single-date projection returned to clients.
type DayWorkouts struct {
	Date           string                `json:"date"`
	Weekday        string                `json:"weekday"`
	IsRestDay      bool                  `json:"is_rest_day"`
	Workouts       []WorkoutDetail       `json:"workouts"`
	TotalExercises int                   `json:"total_exercises"`
	SessionStatus  *domain.SessionStatus `json:"session_status"`
}

// CalendarService projects a weekly schedule onto concrete calendar dates
// and joins in per-date session completion status. Projection is a pure
// function of the schedule, the program trees, and the session snapshot, so
// repeated calls with unchanged inputs yield identical output.
type CalendarService interface {
	// ProjectCalendar expands the user's active schedule over the horizon.
	// Returns a nil schedule and empty entries when no schedule is active.
	ProjectCalendar(ctx context.Context, userID primitive.ObjectID, horizonDays int) (*domain.UserSchedule, []CalendarEntry, error)
	// WorkoutsForDate projects exactly one date with full section detail.
	WorkoutsForDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DayWorkouts, error)
}

// calendarService implements the CalendarService interface.
type calendarService struct {
	programRepo  repository.ProgramRepository
	scheduleRepo repository.ScheduleRepository
	sessionRepo  repository.SessionRepository
}

// NewCalendarService creates a new instance of calendarService.
func NewCalendarService(programRepo repository.ProgramRepository, scheduleRepo repository.ScheduleRepository, sessionRepo repository.SessionRepository) CalendarService {
	return &calendarService{
		programRepo:  programRepo,
		scheduleRepo: scheduleRepo,
		sessionRepo:  sessionRepo,
	}
}

// sectionRef resolves a section id to its section and parent program.
type sectionRef struct {
	section *domain.ProgramSection
	program *domain.WorkoutProgram
}

// sectionIndex loads the schedule's programs once and indexes every section
// by id. Section ids missing from the index are stale references left by
// later-deleted sections; the projection skips them silently.
func (s *calendarService) sectionIndex(ctx context.Context, schedule *domain.UserSchedule) (map[primitive.ObjectID]sectionRef, error) {
	programs, err := s.programRepo.GetByIDs(ctx, schedule.ProgramIDs)
	if err != nil {
		return nil, err
	}
	index := make(map[primitive.ObjectID]sectionRef)
	for i := range programs {
		p := &programs[i]
		for j := range p.Sections {
			index[p.Sections[j].ID] = sectionRef{section: &p.Sections[j], program: p}
		}
	}
	return index, nil
}

// ProjectCalendar expands the weekly slot map into dated entries over the
// horizon. Session status for the whole range is fetched in one query, not
// per day.
func (s *calendarService) ProjectCalendar(ctx context.Context, userID primitive.ObjectID, horizonDays int) (*domain.UserSchedule, []CalendarEntry, error) {
	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, []CalendarEntry{}, nil
		}
		return nil, nil, err
	}

	if horizonDays <= 0 {
		horizonDays = DefaultCalendarHorizonDays
	}

	index, err := s.sectionIndex(ctx, schedule)
	if err != nil {
		return nil, nil, err
	}

	start := domain.DateOnly(schedule.StartDate)
	statusByDate, err := s.statusMap(ctx, userID, start, start.AddDate(0, 0, horizonDays))
	if err != nil {
		return nil, nil, err
	}

	entries := make([]CalendarEntry, 0, horizonDays)
	for offset := 0; offset < horizonDays; offset++ {
		date := start.AddDate(0, 0, offset)
		weekday := domain.WeekdayOf(date)

		sections := make([]CalendarSection, 0, 1)
		exerciseCount := 0
		for _, sectionID := range schedule.WeeklySchedule.Slot(weekday) {
			ref, ok := index[sectionID]
			if !ok {
				continue // stale section reference
			}
			sections = append(sections, CalendarSection{
				SectionID:     ref.section.ID.Hex(),
				Name:          ref.section.Name,
				Type:          ref.section.Type,
				ProgramID:     ref.program.ID.Hex(),
				ProgramName:   ref.program.Name,
				ProgramFocus:  ref.program.Focus,
				ExerciseCount: len(ref.section.Exercises),
			})
			exerciseCount += len(ref.section.Exercises)
		}

		sectionType := "workout"
		if len(sections) == 0 {
			sectionType = "rest"
		}

		entries = append(entries, CalendarEntry{
			Date:          domain.FormatDate(date),
			Weekday:       weekday.String(),
			Sections:      sections,
			SectionType:   sectionType,
			ExerciseCount: exerciseCount,
			SessionStatus: statusByDate[domain.FormatDate(date)],
		})
	}
	return schedule, entries, nil
}

// WorkoutsForDate projects a single date with the full nested section
// detail for client rendering.
func (s *calendarService) WorkoutsForDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DayWorkouts, error) {
	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSchedule
		}
		return nil, err
	}

	index, err := s.sectionIndex(ctx, schedule)
	if err != nil {
		return nil, err
	}

	day := domain.DateOnly(date)
	weekday := domain.WeekdayOf(day)

	workouts := make([]WorkoutDetail, 0, 1)
	totalExercises := 0
	for _, sectionID := range schedule.WeeklySchedule.Slot(weekday) {
		ref, ok := index[sectionID]
		if !ok {
			continue // stale section reference
		}
		workouts = append(workouts, WorkoutDetail{
			SectionID:    ref.section.ID.Hex(),
			Name:         ref.section.Name,
			Type:         ref.section.Type,
			ProgramID:    ref.program.ID.Hex(),
			ProgramName:  ref.program.Name,
			ProgramFocus: ref.program.Focus,
			Exercises:    mapExercises(ref.section.Exercises),
		})
		totalExercises += len(ref.section.Exercises)
	}

	var status *domain.SessionStatus
	session, err := s.sessionRepo.GetByUserAndDate(ctx, userID, day)
	if err == nil {
		st := session.Status
		status = &st
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return &DayWorkouts{
		Date:           domain.FormatDate(day),
		Weekday:        weekday.String(),
		IsRestDay:      len(workouts) == 0,
		Workouts:       workouts,
		TotalExercises: totalExercises,
		SessionStatus:  status,
	}, nil
}

// statusMap builds the per-date session status lookup for the projection
// range in a single query.
func (s *calendarService) statusMap(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (map[string]*domain.SessionStatus, error) {
	sessions, err := s.sessionRepo.GetByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	statusByDate := make(map[string]*domain.SessionStatus, len(sessions))
	for i := range sessions {
		st := sessions[i].Status
		statusByDate[domain.FormatDate(sessions[i].Date)] = &st
	}
	return statusByDate, nil
}

// mapExercises converts a section's exercises to detail DTOs, sorted by
// their declared order.
func mapExercises(exercises []domain.Exercise) []WorkoutExerciseDetail {
	sorted := make([]domain.Exercise, len(exercises))
	copy(sorted, exercises)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	details := make([]WorkoutExerciseDetail, 0, len(sorted))
	for _, ex := range sorted {
		sets := make([]WorkoutSetDetail, 0, len(ex.Sets))
		for _, set := range ex.Sets {
			sets = append(sets, WorkoutSetDetail{
				SetNumber:   set.SetNumber,
				Reps:        set.Reps,
				TimeSeconds: set.TimeSeconds,
				RestSeconds: set.RestSeconds,
			})
		}
		details = append(details, WorkoutExerciseDetail{
			ID:    ex.ID.Hex(),
			Name:  ex.Name,
			Order: ex.Order,
			Sets:  sets,
		})
	}
	return details
}
