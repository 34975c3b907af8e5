package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations'
// contracts: ErrNotFound for missing rows, ErrDuplicate from the session
// unique index, and value-copy semantics so callers never alias stored rows.

// --- fakeProgramRepo ---

type fakeProgramRepo struct {
	mu       sync.Mutex
	programs map[primitive.ObjectID]domain.WorkoutProgram
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[primitive.ObjectID]domain.WorkoutProgram)}
}

func (r *fakeProgramRepo) Create(_ context.Context, program *domain.WorkoutProgram) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if program.ID.IsZero() {
		program.ID = primitive.NewObjectID()
	}
	r.programs[program.ID] = *program
	return program.ID, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	program, ok := r.programs[id]
	if !ok || program.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copied := program
	return &copied, nil
}

func (r *fakeProgramRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.WorkoutProgram, 0, len(ids))
	for _, id := range ids {
		if program, ok := r.programs[id]; ok && !program.IsDeleted {
			result = append(result, program)
		}
	}
	return result, nil
}

func (r *fakeProgramRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.WorkoutProgram
	for _, program := range r.programs {
		if program.TrainerID != nil && *program.TrainerID == trainerID && !program.IsDeleted {
			result = append(result, program)
		}
	}
	return result, nil
}

func (r *fakeProgramRepo) SoftDelete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	program, ok := r.programs[id]
	if !ok || program.IsDeleted || program.TrainerID == nil || *program.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	program.IsDeleted = true
	r.programs[id] = program
	return nil
}

// --- fakeScheduleRepo ---

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[primitive.ObjectID]domain.UserSchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[primitive.ObjectID]domain.UserSchedule)}
}

func (r *fakeScheduleRepo) Create(_ context.Context, schedule *domain.UserSchedule) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	schedule.CreatedAt = time.Now()
	r.schedules[schedule.ID] = *schedule
	return schedule.ID, nil
}

func (r *fakeScheduleRepo) GetActiveByUserID(_ context.Context, userID primitive.ObjectID) (*domain.UserSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *domain.UserSchedule
	for _, schedule := range r.schedules {
		if schedule.UserID != userID || !schedule.IsActive {
			continue
		}
		copied := schedule
		if newest == nil || copied.CreatedAt.After(newest.CreatedAt) {
			newest = &copied
		}
	}
	if newest == nil {
		return nil, repository.ErrNotFound
	}
	newest.WeeklySchedule.Normalize()
	return newest, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, schedule *domain.UserSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[schedule.ID]; !ok {
		return repository.ErrNotFound
	}
	schedule.UpdatedAt = time.Now()
	r.schedules[schedule.ID] = *schedule
	return nil
}

func (r *fakeScheduleRepo) DeactivateAllForUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, schedule := range r.schedules {
		if schedule.UserID == userID && schedule.IsActive {
			schedule.IsActive = false
			r.schedules[id] = schedule
			count++
		}
	}
	return count, nil
}

// --- fakeSessionRepo ---

type sessionKey struct {
	user primitive.ObjectID
	date string
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[sessionKey]domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[sessionKey]domain.WorkoutSession)}
}

func (r *fakeSessionRepo) key(userID primitive.ObjectID, date time.Time) sessionKey {
	return sessionKey{user: userID, date: domain.FormatDate(domain.DateOnly(date))}
}

func (r *fakeSessionRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[r.key(userID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := session
	return &copied, nil
}

func (r *fakeSessionRepo) GetByUserAndDateRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	var result []domain.WorkoutSession
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		if session.Date.Before(from) || !session.Date.Before(to) {
			continue
		}
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *fakeSessionRepo) Insert(_ context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.Date = domain.DateOnly(session.Date)
	key := r.key(session.UserID, session.Date)
	if _, exists := r.sessions[key]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	r.sessions[key] = *session
	return session.ID, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.key(session.UserID, session.Date)
	if _, ok := r.sessions[key]; !ok {
		return repository.ErrNotFound
	}
	r.sessions[key] = *session
	return nil
}

// --- fixtures ---

// buildProgram assembles a program with the given weekly frequency and
// section count. Each section carries one exercise with a single set so
// exercise counts are predictable in projection tests.
func buildProgram(frequency, sectionCount int) *domain.WorkoutProgram {
	trainerID := primitive.NewObjectID()
	sections := make([]domain.ProgramSection, 0, sectionCount)
	for i := 0; i < sectionCount; i++ {
		reps := 10
		sections = append(sections, domain.ProgramSection{
			ID:    primitive.NewObjectID(),
			Name:  fmt.Sprintf("Day %d", i+1),
			Type:  "strength",
			Order: i,
			Exercises: []domain.Exercise{
				{
					ID:    primitive.NewObjectID(),
					Name:  gofakeit.Noun(),
					Order: 0,
					Sets:  []domain.ExerciseSet{{SetNumber: 1, Reps: &reps, RestSeconds: 60}},
				},
			},
		})
	}
	return &domain.WorkoutProgram{
		ID:              primitive.NewObjectID(),
		TrainerID:       &trainerID,
		Name:            gofakeit.AppName(),
		Description:     gofakeit.Sentence(6),
		Focus:           []domain.Focus{domain.FocusStrength},
		Difficulty:      "intermediate",
		WeeklyFrequency: frequency,
		SessionLength:   45,
		Sections:        sections,
	}
}

func buildStoredProgram(t *testing.T, repo *fakeProgramRepo, frequency, sectionCount int) *domain.WorkoutProgram {
	t.Helper()
	program := buildProgram(frequency, sectionCount)
	_, err := repo.Create(context.Background(), program)
	require.NoError(t, err)
	return program
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := domain.ParseDate(s)
	require.NoError(t, err)
	return date
}
