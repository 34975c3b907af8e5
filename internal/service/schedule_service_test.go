package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitcoach/fitness-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestScheduleService(programRepo *fakeProgramRepo, scheduleRepo *fakeScheduleRepo) *scheduleService {
	return NewScheduleService(programRepo, scheduleRepo).(*scheduleService)
}

func sectionIDAt(program *domain.WorkoutProgram, i int) primitive.ObjectID {
	return program.WorkoutSections()[i].ID
}

func TestGenerateSchedule_DistributesSectionsMondayFirst(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	program := buildStoredProgram(t, programRepo, 3, 5)
	start := mustDate(t, "2026-03-02") // a Monday

	schedule, err := svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)
	require.NotNil(t, schedule)

	assert.True(t, schedule.IsActive)
	assert.Equal(t, start, schedule.StartDate)
	assert.Equal(t, []primitive.ObjectID{program.ID}, schedule.ProgramIDs)

	// Three scheduled days, filled monday-first with the first three sections.
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 0)}, schedule.WeeklySchedule.Slot(domain.Monday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 1)}, schedule.WeeklySchedule.Slot(domain.Tuesday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 2)}, schedule.WeeklySchedule.Slot(domain.Wednesday))
	for _, day := range []domain.Weekday{domain.Thursday, domain.Friday, domain.Saturday, domain.Sunday} {
		assert.Empty(t, schedule.WeeklySchedule.Slot(day), day.String())
	}
}

func TestGenerateSchedule_FrequencyCappedAtSeven(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)

	program := buildStoredProgram(t, programRepo, 10, 3)
	start := mustDate(t, "2026-03-02")

	schedule, err := svc.GenerateSchedule(context.Background(), primitive.NewObjectID(), program.ID, &start, nil)
	require.NoError(t, err)

	for _, day := range domain.Weekdays {
		assert.Len(t, schedule.WeeklySchedule.Slot(day), 1, day.String())
	}
}

func TestGenerateSchedule_RoundRobinRepeatsSections(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)

	// One section, frequency three: the section repeats across the days.
	program := buildStoredProgram(t, programRepo, 3, 1)
	start := mustDate(t, "2026-03-02")

	schedule, err := svc.GenerateSchedule(context.Background(), primitive.NewObjectID(), program.ID, &start, nil)
	require.NoError(t, err)

	only := sectionIDAt(program, 0)
	assert.Equal(t, []primitive.ObjectID{only}, schedule.WeeklySchedule.Slot(domain.Monday))
	assert.Equal(t, []primitive.ObjectID{only}, schedule.WeeklySchedule.Slot(domain.Tuesday))
	assert.Equal(t, []primitive.ObjectID{only}, schedule.WeeklySchedule.Slot(domain.Wednesday))
	assert.Empty(t, schedule.WeeklySchedule.Slot(domain.Thursday))
}

func TestGenerateSchedule_RestDaysAreSkipped(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)

	program := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")
	restDays := []domain.Weekday{domain.Monday, domain.Wednesday}

	schedule, err := svc.GenerateSchedule(context.Background(), primitive.NewObjectID(), program.ID, &start, restDays)
	require.NoError(t, err)

	assert.Empty(t, schedule.WeeklySchedule.Slot(domain.Monday))
	assert.Empty(t, schedule.WeeklySchedule.Slot(domain.Wednesday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 0)}, schedule.WeeklySchedule.Slot(domain.Tuesday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 1)}, schedule.WeeklySchedule.Slot(domain.Thursday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(program, 2)}, schedule.WeeklySchedule.Slot(domain.Friday))
}

func TestGenerateSchedule_AllRestSectionsRejected(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)

	program := buildProgram(3, 2)
	for i := range program.Sections {
		program.Sections[i].IsRestDay = true
	}
	_, err := programRepo.Create(context.Background(), program)
	require.NoError(t, err)

	userID := primitive.NewObjectID()
	_, err = svc.GenerateSchedule(context.Background(), userID, program.ID, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyProgram)

	// Validation failed closed: nothing was written.
	active, err := svc.GetActiveSchedule(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestGenerateSchedule_UnknownProgram(t *testing.T) {
	svc := newTestScheduleService(newFakeProgramRepo(), newFakeScheduleRepo())

	_, err := svc.GenerateSchedule(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), nil, nil)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}

func TestNextMonday(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2026-03-05", "2026-03-09"}, // Thursday
		{"2026-03-08", "2026-03-09"}, // Sunday, the very next day
		{"2026-03-02", "2026-03-09"}, // Monday still advances a full week
	}
	for _, tc := range tests {
		today := mustDate(t, tc.today)
		assert.Equal(t, tc.want, domain.FormatDate(nextMonday(today)), "today=%s", tc.today)
	}
}

func TestGenerateSchedule_DefaultsToNextMonday(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC) } // Thursday

	program := buildStoredProgram(t, programRepo, 3, 3)

	schedule, err := svc.GenerateSchedule(context.Background(), primitive.NewObjectID(), program.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", domain.FormatDate(schedule.StartDate))
}

func TestGenerateSchedule_MergeKeepsExistingAnchor(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	first := buildStoredProgram(t, programRepo, 2, 2)
	second := buildStoredProgram(t, programRepo, 2, 2)
	start := mustDate(t, "2026-03-02")

	_, err := svc.GenerateSchedule(context.Background(), userID, first.ID, &start, nil)
	require.NoError(t, err)

	merged, err := svc.GenerateSchedule(context.Background(), userID, second.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, start, merged.StartDate)
	assert.Equal(t, []primitive.ObjectID{first.ID, second.ID}, merged.ProgramIDs)

	// Monday and Tuesday each hold one section from each program, existing
	// entries first.
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(first, 0), sectionIDAt(second, 0)}, merged.WeeklySchedule.Slot(domain.Monday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(first, 1), sectionIDAt(second, 1)}, merged.WeeklySchedule.Slot(domain.Tuesday))
}

func TestGenerateSchedule_DuplicateProgramRejected(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	program := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")

	first, err := svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)

	_, err = svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	assert.ErrorIs(t, err, ErrDuplicateProgram)

	// The rejected merge must not have duplicated any section ids.
	after, err := svc.GetActiveSchedule(context.Background(), userID)
	require.NoError(t, err)
	for _, day := range domain.Weekdays {
		assert.Equal(t, first.WeeklySchedule.Slot(day), after.WeeklySchedule.Slot(day), day.String())
	}
}

func TestRemoveProgram_LastRemovalDeactivates(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	program := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")

	_, err := svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)

	schedule, err := svc.RemoveProgram(context.Background(), userID, program.ID)
	require.NoError(t, err)

	assert.False(t, schedule.IsActive)
	assert.Empty(t, schedule.ProgramIDs)
	for _, day := range domain.Weekdays {
		assert.Empty(t, schedule.WeeklySchedule.Slot(day), day.String())
	}

	active, err := svc.GetActiveSchedule(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRemoveProgram_KeepsOtherProgramSections(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	kept := buildStoredProgram(t, programRepo, 2, 2)
	removed := buildStoredProgram(t, programRepo, 2, 2)
	start := mustDate(t, "2026-03-02")

	_, err := svc.GenerateSchedule(context.Background(), userID, kept.ID, &start, nil)
	require.NoError(t, err)
	_, err = svc.GenerateSchedule(context.Background(), userID, removed.ID, nil, nil)
	require.NoError(t, err)

	schedule, err := svc.RemoveProgram(context.Background(), userID, removed.ID)
	require.NoError(t, err)

	assert.True(t, schedule.IsActive)
	assert.Equal(t, []primitive.ObjectID{kept.ID}, schedule.ProgramIDs)
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(kept, 0)}, schedule.WeeklySchedule.Slot(domain.Monday))
	assert.Equal(t, []primitive.ObjectID{sectionIDAt(kept, 1)}, schedule.WeeklySchedule.Slot(domain.Tuesday))
}

func TestRemoveProgram_ThenReAddRoundTrips(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	kept := buildStoredProgram(t, programRepo, 2, 2)
	cycled := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")

	_, err := svc.GenerateSchedule(context.Background(), userID, kept.ID, &start, nil)
	require.NoError(t, err)
	before, err := svc.GenerateSchedule(context.Background(), userID, cycled.ID, nil, nil)
	require.NoError(t, err)

	_, err = svc.RemoveProgram(context.Background(), userID, cycled.ID)
	require.NoError(t, err)
	after, err := svc.GenerateSchedule(context.Background(), userID, cycled.ID, nil, nil)
	require.NoError(t, err)

	// Same slot composition as before the removal.
	assert.ElementsMatch(t, before.ProgramIDs, after.ProgramIDs)
	for _, day := range domain.Weekdays {
		assert.ElementsMatch(t, before.WeeklySchedule.Slot(day), after.WeeklySchedule.Slot(day), day.String())
	}
}

func TestRemoveProgram_Errors(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	program := buildStoredProgram(t, programRepo, 3, 3)

	_, err := svc.RemoveProgram(context.Background(), userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = svc.RemoveProgram(context.Background(), userID, program.ID)
	assert.ErrorIs(t, err, ErrNoActiveSchedule)

	other := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")
	_, err = svc.GenerateSchedule(context.Background(), userID, other.ID, &start, nil)
	require.NoError(t, err)

	_, err = svc.RemoveProgram(context.Background(), userID, program.ID)
	assert.ErrorIs(t, err, ErrProgramNotScheduled)
}

func TestUpdateStartDate(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	_, err := svc.UpdateStartDate(context.Background(), userID, mustDate(t, "2026-04-06"))
	assert.ErrorIs(t, err, ErrNoActiveSchedule)

	program := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")
	_, err = svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)

	moved, err := svc.UpdateStartDate(context.Background(), userID, mustDate(t, "2026-04-06"))
	require.NoError(t, err)
	assert.Equal(t, "2026-04-06", domain.FormatDate(moved.StartDate))
}

func TestDeactivateSchedules(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	count, err := svc.DeactivateSchedules(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	program := buildStoredProgram(t, programRepo, 3, 3)
	start := mustDate(t, "2026-03-02")
	_, err = svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)

	count, err = svc.DeactivateSchedules(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	active, err := svc.GetActiveSchedule(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestProgramMembership(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	program := buildStoredProgram(t, programRepo, 3, 3)

	_, err := svc.ProgramMembership(context.Background(), userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrProgramNotFound)

	membership, err := svc.ProgramMembership(context.Background(), userID, program.ID)
	require.NoError(t, err)
	assert.False(t, membership.InSchedule)
	assert.Nil(t, membership.ScheduleID)

	start := mustDate(t, "2026-03-02")
	schedule, err := svc.GenerateSchedule(context.Background(), userID, program.ID, &start, nil)
	require.NoError(t, err)

	membership, err = svc.ProgramMembership(context.Background(), userID, program.ID)
	require.NoError(t, err)
	assert.True(t, membership.InSchedule)
	require.NotNil(t, membership.ScheduleID)
	assert.Equal(t, schedule.ID.Hex(), *membership.ScheduleID)
}

func TestGenerateSchedule_ConcurrentMergesBothLand(t *testing.T) {
	programRepo := newFakeProgramRepo()
	scheduleRepo := newFakeScheduleRepo()
	svc := newTestScheduleService(programRepo, scheduleRepo)
	userID := primitive.NewObjectID()

	base := buildStoredProgram(t, programRepo, 2, 2)
	start := mustDate(t, "2026-03-02")
	_, err := svc.GenerateSchedule(context.Background(), userID, base.ID, &start, nil)
	require.NoError(t, err)

	const n = 8
	programs := make([]*domain.WorkoutProgram, n)
	for i := range programs {
		programs[i] = buildStoredProgram(t, programRepo, 2, 2)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(p *domain.WorkoutProgram) {
			defer wg.Done()
			_, err := svc.GenerateSchedule(context.Background(), userID, p.ID, nil, nil)
			assert.NoError(t, err)
		}(programs[i])
	}
	wg.Wait()

	schedule, err := svc.GetActiveSchedule(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Len(t, schedule.ProgramIDs, n+1)
	// Every program's merge survived; no lost updates.
	assert.Len(t, schedule.WeeklySchedule.Slot(domain.Monday), n+1)
	assert.Len(t, schedule.WeeklySchedule.Slot(domain.Tuesday), n+1)
}
