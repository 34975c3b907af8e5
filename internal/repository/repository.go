package repository

import (
	"context"
	"time"

	"fitcoach/fitness-backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository defines the interface for interacting with workout
// program data. Programs are soft-deleted; the read methods exclude
// deleted programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.WorkoutProgram) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutProgram, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutProgram, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutProgram, error)
	SoftDelete(ctx context.Context, id, trainerID primitive.ObjectID) error
}

// ScheduleRepository defines the interface for interacting with user
// schedule data. The at-most-one-active-schedule invariant is enforced by
// the service layer, not here, because inactive history rows coexist.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.UserSchedule) (primitive.ObjectID, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserSchedule, error)
	Update(ctx context.Context, schedule *domain.UserSchedule) error
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// SessionRepository defines the interface for interacting with workout
// session data. Insert returns ErrDuplicate when a row for (user, date)
// already exists, which callers use for unique-constraint-backed
// get-or-create.
type SessionRepository interface {
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error)
	GetByUserAndDateRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error)
	Insert(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	Update(ctx context.Context, session *domain.WorkoutSession) error
}
