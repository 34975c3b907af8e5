package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidDuration = errors.New("duration_minutes must be a non-negative integer")
)

// SessionService tracks start and completion of workout sessions keyed by
// (user, calendar date).
//
// State machine: {absent, in_progress, completed}. Start moves absent to
// in_progress; complete moves absent or in_progress to completed. Completion
// is sticky: start on a completed session is a no-op, and re-completing only
// overwrites duration/notes.
type SessionService interface {
	StartSession(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error)
	// CompleteSession marks the date's session completed. durationMinutes is
	// the raw JSON value; anything not parseable as a non-negative integer
	// fails with ErrInvalidDuration before any mutation. A non-nil notes
	// pointer overwrites prior notes, even when empty.
	CompleteSession(ctx context.Context, userID primitive.ObjectID, date time.Time, durationMinutes any, notes *string) (*domain.WorkoutSession, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo  repository.SessionRepository
	scheduleRepo repository.ScheduleRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository, scheduleRepo repository.ScheduleRepository) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		scheduleRepo: scheduleRepo,
	}
}

// StartSession gets or creates the session for (user, date) with status
// in_progress. An already-completed session is returned unchanged.
func (s *sessionService) StartSession(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error) {
	day := domain.DateOnly(date)

	existing, err := s.sessionRepo.GetByUserAndDate(ctx, userID, day)
	if err == nil {
		// Completion is sticky; a repeated start is also a no-op.
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session := &domain.WorkoutSession{
		UserID:    userID,
		ProgramID: s.activeProgramID(ctx, userID),
		Date:      day,
		Status:    domain.SessionInProgress,
	}
	id, err := s.sessionRepo.Insert(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a concurrent get-or-create race; the winner's row governs.
			return s.sessionRepo.GetByUserAndDate(ctx, userID, day)
		}
		return nil, err
	}
	session.ID = id
	logrus.WithFields(logrus.Fields{
		"userId": userID.Hex(),
		"date":   domain.FormatDate(day),
	}).Info("workout session started")
	return session, nil
}

// CompleteSession gets or creates the session for (user, date) and marks it
// completed, so completing without a prior start is allowed.
func (s *sessionService) CompleteSession(ctx context.Context, userID primitive.ObjectID, date time.Time, durationMinutes any, notes *string) (*domain.WorkoutSession, error) {
	// Validate before any mutation is persisted.
	duration, err := parseDurationMinutes(durationMinutes)
	if err != nil {
		return nil, ErrInvalidDuration
	}
	day := domain.DateOnly(date)

	existing, err := s.sessionRepo.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		session := &domain.WorkoutSession{
			UserID:          userID,
			ProgramID:       s.activeProgramID(ctx, userID),
			Date:            day,
			Status:          domain.SessionCompleted,
			IsCompleted:     true,
			DurationMinutes: duration,
		}
		if notes != nil {
			session.Notes = *notes
		}
		id, insertErr := s.sessionRepo.Insert(ctx, session)
		if insertErr == nil {
			session.ID = id
			logrus.WithFields(logrus.Fields{
				"userId": userID.Hex(),
				"date":   domain.FormatDate(day),
			}).Info("workout session completed")
			return session, nil
		}
		if !errors.Is(insertErr, repository.ErrDuplicate) {
			return nil, insertErr
		}
		// Lost the race to a concurrent start/complete; update that row.
		existing, err = s.sessionRepo.GetByUserAndDate(ctx, userID, day)
		if err != nil {
			return nil, err
		}
	}

	existing.Status = domain.SessionCompleted
	existing.IsCompleted = true
	if duration != nil {
		existing.DurationMinutes = duration
	}
	if notes != nil {
		existing.Notes = *notes
	}
	if err := s.sessionRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"userId": userID.Hex(),
		"date":   domain.FormatDate(day),
	}).Info("workout session completed")
	return existing, nil
}

// activeProgramID returns an informational link to the first program of the
// user's active schedule, if any. Lookup failures are ignored; the link is
// never load-bearing.
func (s *sessionService) activeProgramID(ctx context.Context, userID primitive.ObjectID) *primitive.ObjectID {
	schedule, err := s.scheduleRepo.GetActiveByUserID(ctx, userID)
	if err != nil || len(schedule.ProgramIDs) == 0 {
		return nil
	}
	id := schedule.ProgramIDs[0]
	return &id
}

// parseDurationMinutes coerces the raw JSON duration value to a
// non-negative integer. nil means the caller omitted the field.
func parseDurationMinutes(raw any) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, ErrInvalidDuration
		}
		n = int(v)
	case json.Number:
		parsed, err := strconv.Atoi(v.String())
		if err != nil {
			return nil, ErrInvalidDuration
		}
		n = parsed
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, ErrInvalidDuration
		}
		n = parsed
	case int:
		n = v
	default:
		return nil, ErrInvalidDuration
	}
	if n < 0 {
		return nil, ErrInvalidDuration
	}
	return &n, nil
}
