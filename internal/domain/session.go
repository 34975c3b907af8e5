package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the workout session lifecycle. A missing session
// row means the workout was never started.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// WorkoutSession records a user's actual completion status for one calendar
// date. At most one row exists per (user, date); get-or-create semantics are
// backed by a unique index.
type WorkoutSession struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	ProgramID       *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"` // informational link to the active program
	Date            time.Time           `bson:"date" json:"date"`
	Status          SessionStatus       `bson:"status" json:"status"`
	IsCompleted     bool                `bson:"isCompleted" json:"isCompleted"` // kept in sync with Status == completed
	DurationMinutes *int                `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Notes           string              `bson:"notes,omitempty" json:"notes"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
